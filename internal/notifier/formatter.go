package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"PatternScout/internal/model"
	"PatternScout/internal/scan"
)

// FormatScanReport formats the ranked shortlist into a Telegram message.
func FormatScanReport(summary *scan.Summary, ranked []*model.Signal) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("🎯 <b>%s 选股日报</b> | %s\n\n",
		summary.Pattern, time.Now().Format("2006-01-02")))
	b.WriteString(fmt.Sprintf("扫描 %d 只 | 命中 %d 只 | 异常 %d 只 | 耗时 %s\n\n",
		summary.UniverseSize, len(summary.Signals), summary.Failed,
		summary.Elapsed.Round(time.Millisecond)))

	if len(ranked) == 0 {
		b.WriteString("今日无符合条件的标的。\n")
		return b.String()
	}

	b.WriteString("📋 <b>精选标的:</b>\n")
	for i, sig := range ranked {
		b.WriteString(fmt.Sprintf("%d. <b>%s %s</b>  %.2f (%+.2f%%)\n",
			i+1, sig.Code, sig.Name, sig.Close, sig.PctChange))
		b.WriteString(fmt.Sprintf("   评分 %d | %s | 止损 %.2f\n",
			sig.Score, sig.Advice, sig.StopLoss))
		if sig.SupportMA != "" {
			b.WriteString(fmt.Sprintf("   贴线 %s 偏离 %+.2f%%\n", strings.ToUpper(sig.SupportMA), sig.ProximityPct))
		}
		if v, ok := sig.Metrics["vol_ratio"]; ok && v > 0 {
			b.WriteString(fmt.Sprintf("   量比 %.2f", v))
			if turnover, ok := sig.Metrics["turnover"]; ok {
				b.WriteString(fmt.Sprintf(" | 成交额 %s", humanize.SIWithDigits(turnover, 1, "")))
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
