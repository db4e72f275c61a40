package pipeline

import "math"

// CostReport tallies the billing units a batch consumed: parse is billed
// per page, extract per character of markdown in and extraction out.
type CostReport struct {
	ParseUnits   float64
	ExtractUnits float64
}

func (c CostReport) Total() float64 {
	return round1(c.ParseUnits + c.ExtractUnits)
}

const (
	parseUnitsPerPage    = 3.0
	markdownCharsPerUnit = 5000.0
	extractCharsPerUnit  = 1000.0
)

// Cost estimates the units consumed by the batch's successful documents.
func (s Summary) Cost() CostReport {
	var report CostReport
	for _, o := range s.Outcomes {
		if !o.Ok() {
			continue
		}
		report.ParseUnits += parseUnitsPerPage * float64(o.Parse.Metadata.PageCount)
		report.ExtractUnits += round1(float64(len(o.Parse.Markdown)) / markdownCharsPerUnit)
		report.ExtractUnits += round1(float64(len(o.Extract.Extraction)) / extractCharsPerUnit)
	}
	report.ParseUnits = round1(report.ParseUnits)
	report.ExtractUnits = round1(report.ExtractUnits)
	return report
}

func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
