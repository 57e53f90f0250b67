package exporter

import (
	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"

	"sorlens/internal/calculator"
)

type styles struct {
	title  int
	bold   int
	header int
	fills  map[string]int
}

func newStyles(f *excelize.File) (*styles, error) {
	st := &styles{fills: make(map[string]int)}
	var err error

	if st.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14},
	}); err != nil {
		return nil, eris.Wrap(err, "exporter: title style")
	}
	if st.bold, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	}); err != nil {
		return nil, eris.Wrap(err, "exporter: bold style")
	}
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#E2E8F0"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", WrapText: true},
	}); err != nil {
		return nil, eris.Wrap(err, "exporter: header style")
	}

	for _, color := range []string{calculator.ColorGreen, calculator.ColorYellow, calculator.ColorOrange, calculator.ColorRed} {
		id, err := f.NewStyle(&excelize.Style{
			Fill:   excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
			NumFmt: 2,
		})
		if err != nil {
			return nil, eris.Wrapf(err, "exporter: fill style %s", color)
		}
		st.fills[color] = id
	}
	return st, nil
}

// colorCell 按阈值颜色填充单元格
func (s *styles) colorCell(f *excelize.File, sheet, ref, color string) error {
	id, ok := s.fills[color]
	if !ok {
		return nil
	}
	return f.SetCellStyle(sheet, ref, ref, id)
}
