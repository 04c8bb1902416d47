package rag

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/eduhub/tutor-go/internal/errors"
)

// buildPDF 按页文本构造最小PDF文档，空字符串表示空白页。
// 交叉引用表偏移量按实际写入位置计算，保证文档结构合法。
func buildPDF(t *testing.T, pageTexts []string) []byte {
	t.Helper()

	// 对象编号：1 Catalog，2 Pages，3 字体，4..3+n 页面，其后为内容流
	n := len(pageTexts)
	contentObj := make([]int, n)
	next := 4 + n
	for i, txt := range pageTexts {
		if txt != "" {
			contentObj[i] = next
			next++
		}
	}
	total := next - 1

	kids := make([]string, n)
	for i := range pageTexts {
		kids[i] = fmt.Sprintf("%d 0 R", 4+i)
	}

	objs := make([]string, total+1)
	objs[1] = "<< /Type /Catalog /Pages 2 0 R >>"
	objs[2] = fmt.Sprintf("<< /Type /Pages /Kids [%s] /Count %d >>", strings.Join(kids, " "), n)
	objs[3] = "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>"
	for i, txt := range pageTexts {
		page := "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 3 0 R >> >>"
		if txt != "" {
			page += fmt.Sprintf(" /Contents %d 0 R", contentObj[i])
		}
		page += " >>"
		objs[4+i] = page

		if txt != "" {
			stream := fmt.Sprintf("BT /F1 12 Tf 72 720 Td (%s) Tj ET", txt)
			objs[contentObj[i]] = fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(stream), stream)
		}
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, total+1)
	for num := 1; num <= total; num++ {
		offsets[num] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", num, objs[num])
	}

	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", total+1)
	buf.WriteString("0000000000 65535 f \n")
	for num := 1; num <= total; num++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[num])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", total+1, xref)
	return buf.Bytes()
}

// TestPDFExtractorSkipsBlankPages 三页文档中间页空白，产出两个单元且页号保留
func TestPDFExtractorSkipsBlankPages(t *testing.T) {
	data := buildPDF(t, []string{"Introduction to attention", "", "Transformer architectures"})

	units, err := NewPDFExtractor().Extract(data, "lecture.pdf")
	require.NoError(t, err)
	require.Len(t, units, 2)

	assert.Equal(t, 1, units[0].Page)
	assert.Contains(t, units[0].Content, "Introduction to attention")
	assert.Equal(t, 3, units[1].Page)
	assert.Contains(t, units[1].Content, "Transformer architectures")
}

// TestPDFExtractorBlankDocument 零个可提取页面是合法结果而非提取错误
func TestPDFExtractorBlankDocument(t *testing.T) {
	data := buildPDF(t, []string{"", ""})

	units, err := NewPDFExtractor().Extract(data, "blank.pdf")
	require.NoError(t, err)
	assert.Empty(t, units)
}

// TestPDFExtractorRejectsGarbage 测试无法解析的字节流
func TestPDFExtractorRejectsGarbage(t *testing.T) {
	e := NewPDFExtractor()

	for name, data := range map[string][]byte{
		"空字节流":   {},
		"非PDF内容": []byte("this is definitely not a pdf document"),
		"截断的PDF": []byte("%PDF-1.7\n1 0 obj\n"),
	} {
		t.Run(name, func(t *testing.T) {
			units, err := e.Extract(data, "bad.pdf")
			assert.Nil(t, units)
			appErr := apperrors.From(err)
			assert.Equal(t, apperrors.ErrCodeUnreadableDocument, appErr.Code)
			assert.Equal(t, 422, appErr.HTTPCode)
		})
	}
}
