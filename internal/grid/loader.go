package grid

import (
	"bytes"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"sorlens/internal/model"
)

// Format 源文件格式
type Format string

const (
	FormatCSV         Format = "csv"
	FormatXLSX        Format = "xlsx"
	FormatUnsupported Format = "unsupported"
)

// ErrUnsupportedFormat 无法作为表格读取的文件（旧版 .xls、PDF、Word、图片等）
var ErrUnsupportedFormat = eris.New("unsupported file format")

var (
	zipMagic = []byte("PK\x03\x04")
	// OLE2 复合文档：.xls / .doc / .ppt
	oleMagic = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
	pdfMagic = []byte("%PDF")
)

// unsupportedExts 已知的非表格或不支持的扩展名
var unsupportedExts = map[string]bool{
	".xls": true, ".xlt": true, ".xlsb": true, ".ods": true,
	".pdf": true, ".doc": true, ".docx": true, ".rtf": true, ".odt": true,
	".ppt": true, ".pptx": true,
	".zip": true, ".rar": true, ".7z": true,
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true,
}

// maxControlRatio 解码后文本中控制字符的占比上限，超过则视为二进制
const maxControlRatio = 0.01

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Loader 表格源加载器（CSV / XLSX -> RawGrid）
type Loader struct {
	// Sheet 指定工作表；为空时取第一个非空工作表
	Sheet string
}

// NewLoader 创建加载器
func NewLoader() *Loader {
	return &Loader{}
}

// LoadFile 从路径加载
func (l *Loader) LoadFile(path string) (*model.RawGrid, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "grid: open %s", path)
	}
	defer f.Close()

	return l.Load(filepath.Base(path), f)
}

// Load 从 reader 加载，name 用于判断格式与错误信息
func (l *Loader) Load(name string, r io.Reader) (*model.RawGrid, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrapf(err, "grid: read %s", name)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, eris.Errorf("grid: %s is empty", name)
	}

	switch DetectFormat(name, data) {
	case FormatXLSX:
		return l.loadXLSX(name, data)
	case FormatUnsupported:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "grid: %s", name)
	default:
		return l.loadCSV(name, data)
	}
}

// DetectFormat 先看 OLE/PDF 文件头，再看扩展名，最后看 zip 文件头
func DetectFormat(name string, data []byte) Format {
	if bytes.HasPrefix(data, oleMagic) || bytes.HasPrefix(data, pdfMagic) {
		return FormatUnsupported
	}
	ext := strings.ToLower(filepath.Ext(name))
	if unsupportedExts[ext] {
		return FormatUnsupported
	}
	switch ext {
	case ".xlsx", ".xlsm", ".xltx":
		return FormatXLSX
	case ".csv", ".txt", ".tsv":
		return FormatCSV
	}
	if bytes.HasPrefix(data, zipMagic) {
		return FormatXLSX
	}
	return FormatCSV
}

func (l *Loader) loadXLSX(name string, data []byte) (*model.RawGrid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, eris.Wrapf(err, "grid: open workbook %s", name)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if l.Sheet != "" {
		sheets = []string{l.Sheet}
	}

	for _, sheet := range sheets {
		rows, err := f.GetRows(sheet)
		if err != nil {
			if l.Sheet != "" {
				return nil, eris.Wrapf(err, "grid: read sheet %s of %s", sheet, name)
			}
			continue
		}
		if !hasContent(rows) {
			continue
		}
		return model.NewRawGrid(name, rows).WithSheet(sheet), nil
	}

	return nil, eris.Errorf("grid: workbook %s has no non-empty sheet", name)
}

func (l *Loader) loadCSV(name string, data []byte) (*model.RawGrid, error) {
	if bytes.IndexByte(data, 0) >= 0 {
		return nil, eris.Wrapf(ErrUnsupportedFormat, "grid: %s is binary, not a text table", name)
	}
	text := decodeText(data)
	if looksBinary(text) {
		return nil, eris.Wrapf(ErrUnsupportedFormat, "grid: %s is binary, not a text table", name)
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = sniffDelimiter(text)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "grid: parse csv %s", name)
	}
	if !hasContent(rows) {
		return nil, eris.Errorf("grid: %s has no cells", name)
	}

	return model.NewRawGrid(name, rows), nil
}

// decodeText 处理 BOM，并在非 UTF-8 时尝试西里尔单字节编码
func decodeText(data []byte) string {
	data = bytes.TrimPrefix(data, utf8BOM)
	if utf8.Valid(data) {
		return string(data)
	}

	best := ""
	bestScore := -1
	for _, enc := range []encoding.Encoding{charmap.Windows1251, charmap.KOI8R} {
		decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
		if err != nil {
			continue
		}
		s := string(decoded)
		if score := cyrillicScore(s); score > bestScore {
			best = s
			bestScore = score
		}
	}
	if bestScore < 0 {
		return string(data)
	}
	return best
}

// cyrillicScore 常见小写西里尔字母的数量；KOI8-R 误解码时大小写会颠倒
func cyrillicScore(s string) int {
	n := 0
	for _, r := range s {
		if strings.ContainsRune("оеаинтсрвлк", r) {
			n++
		}
	}
	return n
}

// looksBinary 控制字符（制表、换行除外）占比过高
func looksBinary(text string) bool {
	total, control := 0, 0
	for _, r := range text {
		total++
		if r == utf8.RuneError || (unicode.IsControl(r) && r != '\t' && r != '\n' && r != '\r') {
			control++
		}
	}
	return total > 0 && float64(control)/float64(total) > maxControlRatio
}

func sniffDelimiter(text string) rune {
	line := text
	for _, l := range strings.Split(text, "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}

	best := ','
	bestCount := 0
	for _, d := range []rune{',', ';', '\t'} {
		if n := strings.Count(line, string(d)); n > bestCount {
			best = d
			bestCount = n
		}
	}
	return best
}

func hasContent(rows [][]string) bool {
	for _, r := range rows {
		for _, v := range r {
			if strings.TrimSpace(v) != "" {
				return true
			}
		}
	}
	return false
}
