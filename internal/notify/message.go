package notify

import (
	"fmt"
	"html"
	"slices"
	"strings"

	"github.com/darkkaiser/kaidoki-navi/internal/catalog"
	"github.com/darkkaiser/kaidoki-navi/internal/pipeline"
	"github.com/darkkaiser/kaidoki-navi/internal/pkg/mark"
	"github.com/darkkaiser/kaidoki-navi/pkg/strutil"
)

const (
	// maxPriceDrops 보고 메시지에 나열하는 가격 하락 상품의 최대 개수
	maxPriceDrops = 10

	nameRunes = 30
)

// buildReport 실행 결과 요약 메시지(HTML)를 생성합니다.
func buildReport(siteName string, sum pipeline.Summary) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%s <b>%s</b> 갱신 완료\n", mark.Done, html.EscapeString(siteName))
	fmt.Fprintf(&sb, "실행 ID: <code>%s</code>\n\n", sum.RunID)

	fmt.Fprintf(&sb, "수집 %s건", strutil.FormatCommas(sum.Fetched))
	if len(sum.FailedSources) > 0 {
		fmt.Fprintf(&sb, " (실패 수집처: %s)", html.EscapeString(strings.Join(sum.FailedSources, ", ")))
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "%s 신규 %s건 / 갱신 %s건 / 건너뜀 %s건\n",
		mark.New, strutil.FormatCommas(sum.Created), strutil.FormatCommas(sum.Updated), strutil.FormatCommas(sum.Skipped))
	fmt.Fprintf(&sb, "AI 생성 %s/%s", strutil.FormatCommas(sum.DerivedApplied), strutil.FormatCommas(sum.DerivedRequested))
	if sum.DerivedFailed > 0 {
		fmt.Fprintf(&sb, " (실패 %s)", strutil.FormatCommas(sum.DerivedFailed))
	}
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "전체 상품 %s건, 페이지 %s개\n", strutil.FormatCommas(sum.Total), strutil.FormatCommas(sum.RenderedFiles))

	drops := topDrops(sum.PriceDrops, maxPriceDrops)
	if len(drops) > 0 {
		fmt.Fprintf(&sb, "\n%s <b>가격 하락</b> (%d건)\n", mark.PriceDown, len(sum.PriceDrops))
		for _, c := range drops {
			fmt.Fprintf(&sb, "• %s\n  %s円 → <b>%s円</b> (-%s円)\n",
				html.EscapeString(strutil.TruncateRunes(c.Name, nameRunes, "...")),
				strutil.FormatCommas(c.Previous),
				strutil.FormatCommas(c.Current),
				strutil.FormatCommas(c.Previous-c.Current))
		}
		if rest := len(sum.PriceDrops) - len(drops); rest > 0 {
			fmt.Fprintf(&sb, "외 %d건\n", rest)
		}
	}

	return strings.TrimRight(sb.String(), "\n")
}

// buildError 실행 실패 알림 메시지(HTML)를 생성합니다.
func buildError(siteName string, err error) string {
	return fmt.Sprintf("%s <b>%s</b> 갱신 실패\n\n%s", mark.Alert, html.EscapeString(siteName), html.EscapeString(err.Error()))
}

// topDrops 하락 폭이 큰 순서로 최대 n개를 반환합니다.
func topDrops(changes []catalog.PriceChange, n int) []catalog.PriceChange {
	sorted := slices.Clone(changes)
	slices.SortStableFunc(sorted, func(a, b catalog.PriceChange) int {
		return (b.Previous - b.Current) - (a.Previous - a.Current)
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}
