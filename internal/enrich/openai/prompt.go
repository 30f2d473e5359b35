package openai

import (
	"fmt"
	"strings"

	"github.com/darkkaiser/kaidoki-navi/internal/enrich"
	"github.com/darkkaiser/kaidoki-navi/pkg/strutil"
)

const systemPrompt = "あなたはプロのAIアシスタントです。"

// descriptionMaxRunes 프롬프트에 넣는 상품 설명의 최대 길이
const descriptionMaxRunes = 1500

func metadataPrompt(in enrich.MetadataInput) string {
	var sb strings.Builder
	sb.WriteString("以下の商品情報をもとに、ウェブサイトのコンテンツとして最適な、簡潔で魅力的な要約、関連するタグ（3〜5個）、そして適切なサブカテゴリー（1つ）を日本語で生成してください。\n")
	sb.WriteString("回答は必ずJSON形式で提供してください。JSONは「summary」、「tags」、「sub_category」の3つのキーを持ちます。\n\n")
	fmt.Fprintf(&sb, "商品名: %s\n", in.Name)
	fmt.Fprintf(&sb, "商品説明: %s\n\n", strutil.TruncateRunes(in.Description, descriptionMaxRunes, "…"))
	sb.WriteString("要約の文章には、SEOを意識した「格安」「最安値」「セール」「割引」などのキーワードを自然に含めてください。\n")
	sb.WriteString("タグは商品の特徴や用途を表す単語をリスト形式で生成してください。セール中やポイント還元率が高い場合は「セール」や「ポイント高還元」といったタグを必ず含めてください。\n")
	sb.WriteString("サブカテゴリーは、商品のジャンルを細分化した単一の単語を生成してください。")
	return sb.String()
}

func analysisPrompt(in enrich.AnalysisInput) string {
	history := "価格履歴はありません。"
	if len(in.History) > 0 {
		points := make([]string, 0, len(in.History))
		for _, p := range in.History {
			points = append(points, fmt.Sprintf("%s: %s円", p.Date, strutil.FormatCommas(p.Price)))
		}
		history = "過去の価格履歴は以下の通りです: " + strings.Join(points, ", ")
	}

	var sb strings.Builder
	sb.WriteString("あなたは、価格比較の専門家として、消費者に商品の買い時をアドバイスします。回答は必ずJSON形式で提供してください。")
	sb.WriteString("JSONは「headline」と「analysis」の2つのキーを持ちます。「headline」は商品の買い時を伝える簡潔な一言で、可能であれば具体的な割引率や数字を使って表現してください。")
	sb.WriteString("「analysis」はなぜ買い時なのかを説明する詳細な文章です。日本語で回答してください。\n")
	fmt.Fprintf(&sb, "%sという商品の現在の価格は%s円です。%s。", in.Name, strutil.FormatCommas(in.Price), history)
	sb.WriteString("この商品の価格について、市場の動向を踏まえた分析と買い時に関するアドバイスを日本語で提供してください。")
	sb.WriteString("特に価格が前回と比べて下がっている場合は、「最安値」や「セール」といったキーワードを使って買い時を強調してください。\n")
	sb.WriteString("ポイント還元率が高い場合、その情報を「headline」に含めて強調してください。")
	return sb.String()
}
