// kaidoki-navi 쇼핑몰 상품을 수집하여 가격 이력과 AI 분석이 포함된 비교 사이트를 생성합니다.
package main

import (
	"os"

	_ "github.com/darkkaiser/kaidoki-navi/internal/source/rakuten"
	_ "github.com/darkkaiser/kaidoki-navi/internal/source/yahoo"
)

func main() {
	os.Exit(execute(os.Args[1:]))
}
