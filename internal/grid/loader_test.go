package grid

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
)

func TestLoad_CSVSemicolonWithBOM(t *testing.T) {
	t.Parallel()

	data := append([]byte{0xEF, 0xBB, 0xBF}, []byte("Работа;Выполнили;% качества\nСОР №1;25;90\n")...)
	g, err := NewLoader().Load("journal.csv", bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, 2, g.NumRows())
	assert.Equal(t, 3, g.NumCols())
	assert.Equal(t, "Работа", g.Cell(0, 0).Text())
	assert.Equal(t, 90.0, g.Cell(1, 2).Value)
}

func TestLoad_CSVWindows1251(t *testing.T) {
	t.Parallel()

	encoded, err := charmap.Windows1251.NewEncoder().Bytes([]byte("СОЧ №1,20,75\nтекст,,\n"))
	require.NoError(t, err)

	g, err := NewLoader().Load("export.csv", bytes.NewReader(encoded))
	require.NoError(t, err)
	assert.Equal(t, "СОЧ №1", g.Cell(0, 0).Text())
	assert.Equal(t, "текст", g.Cell(1, 0).Text())
}

func TestLoad_XLSXFirstNonEmptySheet(t *testing.T) {
	t.Parallel()

	f := excelize.NewFile()
	t.Cleanup(func() { _ = f.Close() })
	_, err := f.NewSheet("Данные")
	require.NoError(t, err)
	require.NoError(t, f.SetSheetRow("Данные", "A1", &[]any{"СОР №1", 24, 1, "", "", "", "", 88, 96}))

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)

	g, err := NewLoader().Load("kundelik.xlsx", buf)
	require.NoError(t, err)
	assert.Equal(t, "Данные", g.Sheet())
	assert.Equal(t, "СОР №1", g.Cell(0, 0).Text())
	assert.Equal(t, 88.0, g.Cell(0, 7).Value)
	assert.True(t, g.Cell(0, 3).IsEmpty())
}

func TestLoadFile_FromDisk(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "marks.csv")
	require.NoError(t, os.WriteFile(path, []byte("ФИО,Класс,Оценка\nАйгерим,7А,5\n"), 0o644))

	g, err := NewLoader().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "marks.csv", g.Source())
	assert.Equal(t, 5.0, g.Cell(1, 2).Value)
}

func TestLoad_Failures(t *testing.T) {
	t.Parallel()

	_, err := NewLoader().Load("empty.csv", bytes.NewReader(nil))
	assert.Error(t, err)

	_, err = NewLoader().Load("broken.xlsx", bytes.NewReader([]byte("PK\x03\x04not really a zip")))
	assert.Error(t, err)
}

func TestLoad_RejectsBinaryFiles(t *testing.T) {
	t.Parallel()

	ole := append([]byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}, bytes.Repeat([]byte{0x00, 0x9C, 0x13}, 32)...)
	pdf := []byte("%PDF-1.7\n1 0 obj\n<< /Type /Catalog >>\nendobj\n")
	junk := bytes.Repeat([]byte{0x01, 0xC0, 0x02, 0xE8, 0x1B, 0x41}, 40)

	cases := []struct {
		name string
		data []byte
	}{
		{"journal.xls", ole},
		{"renamed.csv", ole},
		{"scan.pdf", pdf},
		{"scan", pdf},
		{"report.docx", []byte("PK\x03\x04word/document.xml")},
		{"photo.jpg", []byte("Работа;Выполнили\n")},
		{"upload.bin", junk},
		{"nul.csv", []byte("a,b\x00c\n1,2\n")},
	}
	for _, tc := range cases {
		_, err := NewLoader().Load(tc.name, bytes.NewReader(tc.data))
		require.Error(t, err, tc.name)
		assert.True(t, eris.Is(err, ErrUnsupportedFormat), tc.name)
	}
}

func TestDetectFormat(t *testing.T) {
	t.Parallel()

	assert.Equal(t, FormatUnsupported, DetectFormat("a.xls", nil))
	assert.Equal(t, FormatUnsupported, DetectFormat("a.csv", []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}))
	assert.Equal(t, FormatUnsupported, DetectFormat("upload", []byte("%PDF-1.4")))

	assert.Equal(t, FormatXLSX, DetectFormat("a.XLSX", nil))
	assert.Equal(t, FormatCSV, DetectFormat("a.csv", []byte("PK\x03\x04")))
	assert.Equal(t, FormatXLSX, DetectFormat("upload", []byte("PK\x03\x04rest")))
	assert.Equal(t, FormatCSV, DetectFormat("upload", []byte("a,b")))
}
