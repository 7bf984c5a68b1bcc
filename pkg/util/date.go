package util

import (
	"strings"
	"time"
)

var dateTplReplacer = strings.NewReplacer(
	"YYYY", "2006",
	"YY", "06",
	"MM", "01",
	"DD", "02",
	"hh", "15",
	"mm", "04",
	"ss", "05",
)

// FormatDateTpl formats an epoch-millis timestamp with a YYYY/MM/DD hh:mm:ss
// style template, in UTC. Zero yields "".
//
//	FormatDateTpl(1699603200000, "YYYY-MM-DD hh:mm") // "2023-11-10 08:00"
func FormatDateTpl(ts int64, tpl string) string {
	if ts == 0 {
		return ""
	}
	return time.UnixMilli(ts).UTC().Format(dateTplReplacer.Replace(tpl))
}
