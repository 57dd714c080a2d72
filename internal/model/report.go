package model

// Summary counts the outcome of one check run.
type Summary struct {
	Total         int // records read from the difference source
	BelowSeverity int // dropped by the minimum severity threshold
	Filtered      int // dropped by the filter chain
	Reported      int
	Errors        int
	Warnings      int
	Infos         int
}

// Summarize counts the reported records by severity.
func Summarize(total, belowSeverity int, reported []DifferenceRecord) Summary {
	summary := Summary{
		Total:         total,
		BelowSeverity: belowSeverity,
		Reported:      len(reported),
		Filtered:      total - belowSeverity - len(reported),
	}

	for _, record := range reported {
		switch record.Severity {
		case SeverityError:
			summary.Errors++
		case SeverityWarning:
			summary.Warnings++
		default:
			summary.Infos++
		}
	}

	return summary
}

// Report is the filtered outcome handed to the output sinks.
type Report struct {
	Records []DifferenceRecord
	Summary Summary
}
