package testkit

import (
	"encoding/csv"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"viewstudy/domain/core"
	"viewstudy/domain/viewing"
)

// ExportDateLayout is the date format of the streaming-service export
const ExportDateLayout = "1/2/06"

// HistoryGeneratorConfig configures the synthetic viewing-history generator
type HistoryGeneratorConfig struct {
	StartDate      time.Time        `json:"start_date"`
	EndDate        time.Time        `json:"end_date"`
	Calendar       viewing.Calendar `json:"calendar"`
	ViewsPerDay    float64          `json:"views_per_day"`   // mean views on a non-exam day
	ExamMultiplier float64          `json:"exam_multiplier"` // scales the mean on exam days
	IdleDayRate    float64          `json:"idle_day_rate"`   // share of days with no viewing at all
	BingeRate      float64          `json:"binge_rate"`      // chance a day contains a binge
	MalformedRows  int              `json:"malformed_rows"`  // rows with broken dates or titles
	Seed           int64            `json:"seed"`
}

// DefaultHistoryConfig returns a calendar year with two exam periods
func DefaultHistoryConfig() HistoryGeneratorConfig {
	return HistoryGeneratorConfig{
		StartDate: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
		Calendar: viewing.Calendar{Ranges: []viewing.ExamRange{
			{Start: core.NewDate(2024, time.May, 5), End: core.NewDate(2024, time.May, 17), Label: "spring"},
			{Start: core.NewDate(2024, time.December, 7), End: core.NewDate(2024, time.December, 15), Label: "winter"},
		}},
		ViewsPerDay:    3,
		ExamMultiplier: 1,
		IdleDayRate:    0.3,
		BingeRate:      0.2,
		Seed:           42,
	}
}

var shows = []string{"Dark", "The Crown", "Arcane", "Stranger Things", "Bridgerton", "Wednesday"}
var films = []string{"Glass Onion", "The Irishman", "Roma", "Okja"}

// HistoryGenerator produces deterministic export rows for tests
type HistoryGenerator struct {
	config HistoryGeneratorConfig
	rng    *rand.Rand
}

// NewHistoryGenerator creates a generator seeded from the config
func NewHistoryGenerator(config HistoryGeneratorConfig) *HistoryGenerator {
	return &HistoryGenerator{
		config: config,
		rng:    rand.New(rand.NewSource(config.Seed)),
	}
}

// GenerateRows generates export rows in date order, followed by any
// malformed rows. Lines match the written file, header first.
func (g *HistoryGenerator) GenerateRows() []viewing.RawRow {
	var rows []viewing.RawRow
	episode := make(map[string]int)

	for day := g.config.StartDate; !day.After(g.config.EndDate); day = day.AddDate(0, 0, 1) {
		if g.rng.Float64() < g.config.IdleDayRate {
			continue
		}
		mean := g.config.ViewsPerDay
		if g.config.Calendar.IsExam(core.DateOf(day)) {
			mean *= g.config.ExamMultiplier
		}
		views := 1 + g.poisson(math.Max(mean-1, 0))
		date := day.Format(ExportDateLayout)

		if g.rng.Float64() < g.config.BingeRate && views < 3 {
			views = 3
		}
		binge := views >= 3 && g.rng.Float64() < g.config.BingeRate
		bingeShow := shows[g.rng.Intn(len(shows))]

		for i := 0; i < views; i++ {
			var title string
			switch {
			case binge:
				title = g.episodeTitle(bingeShow, episode)
			case g.rng.Float64() < 0.25:
				title = films[g.rng.Intn(len(films))]
			default:
				title = g.episodeTitle(shows[g.rng.Intn(len(shows))], episode)
			}
			rows = append(rows, viewing.RawRow{Line: len(rows) + 2, Title: title, Date: date})
		}
	}

	for i := 0; i < g.config.MalformedRows; i++ {
		row := viewing.RawRow{Line: len(rows) + 2, Title: films[i%len(films)], Date: "not-a-date"}
		if i%2 == 1 {
			row = viewing.RawRow{Line: len(rows) + 2, Title: "", Date: g.config.StartDate.Format(ExportDateLayout)}
		}
		rows = append(rows, row)
	}
	return rows
}

func (g *HistoryGenerator) episodeTitle(show string, episode map[string]int) string {
	episode[show]++
	n := episode[show]
	return fmt.Sprintf("%s: Season %d: Episode %d", show, (n-1)/10+1, (n-1)%10+1)
}

// poisson draws from a Poisson distribution with Knuth's method
func (g *HistoryGenerator) poisson(lambda float64) int {
	if lambda <= 0 {
		return 0
	}
	limit := math.Exp(-lambda)
	k, p := 0, 1.0
	for {
		p *= g.rng.Float64()
		if p <= limit {
			return k
		}
		k++
	}
}

// WriteHistoryCSV writes rows as a Title,Date CSV export
func WriteHistoryCSV(path string, rows []viewing.RawRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Title", "Date"}); err != nil {
		return err
	}
	for _, r := range rows {
		if err := w.Write([]string{r.Title, r.Date}); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// WriteHistoryXLSX writes rows to the first sheet of a workbook
func WriteHistoryXLSX(path string, rows []viewing.RawRow) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	if err := f.SetSheetRow(sheet, "A1", &[]interface{}{"Title", "Date"}); err != nil {
		return err
	}
	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &[]interface{}{r.Title, r.Date}); err != nil {
			return err
		}
	}
	return f.SaveAs(path)
}
