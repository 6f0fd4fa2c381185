package inspection

import (
	"regexp"
	"strings"
)

// extractor pulls one field out of a single report line.
type extractor func(line string) (string, bool)

// 各字段的匹配规则互相独立，编译一次后只读
var (
	dmaNamePattern   = regexp.MustCompile(`Test case for ([^,]+)`)
	indexPattern     = regexp.MustCompile(`Index\s"([^"]+)"`)
	thresholdPattern = regexp.MustCompile(`Threshold:\s(.*?),\sOperator`)
	operatorPattern  = regexp.MustCompile(`Operator:\s(\w+)`)
	actualPattern    = regexp.MustCompile(`Actual:\s(.*)`)
)

func submatch(re *regexp.Regexp) extractor {
	return func(line string) (string, bool) {
		m := re.FindStringSubmatch(line)
		if m == nil {
			return "", false
		}
		return m[1], true
	}
}

var (
	extractDMAName   = submatch(dmaNamePattern)
	extractIndex     = submatch(indexPattern)
	extractThreshold = submatch(thresholdPattern)
	extractOperator  = submatch(operatorPattern)
	extractActual    = submatch(actualPattern)
)

// orDefault 未匹配时返回默认值
func orDefault(e extractor, line, def string) string {
	if v, ok := e(line); ok {
		return v
	}
	return def
}

// ParseLine converts one report line into a row. It never fails: fields that
// are missing fall back to an empty string, except the index which falls
// back to "N/A".
func ParseLine(line string) ParsedRow {
	// 只处理单行内容，多行输入截断到第一个换行
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = strings.TrimSuffix(line[:i], "\r")
	}

	op := orDefault(extractOperator, line, "")
	threshold := orDefault(extractThreshold, line, "")

	return ParsedRow{
		DMAName:    orDefault(extractDMAName, line, ""),
		Index:      orDefault(extractIndex, line, IndexNotAvailable),
		Comparison: OperatorSymbol(op) + " " + threshold,
		Actual:     orDefault(extractActual, line, ""),
	}
}

// SplitReportLines splits a diagnostic blob on "\n" and "\r\n" and drops
// empty fragments.
func SplitReportLines(blob string) []string {
	parts := strings.Split(strings.ReplaceAll(blob, "\r\n", "\n"), "\n")
	lines := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		lines = append(lines, p)
	}
	return lines
}

// ParseReport parses every line after the header, keeping source order.
func ParseReport(lines []string) []ParsedRow {
	if len(lines) < 2 {
		return []ParsedRow{}
	}
	rows := make([]ParsedRow, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, ParseLine(line))
	}
	return rows
}
