package rag

import (
	"bytes"
	"strings"

	"github.com/unidoc/unipdf/v3/extractor"
	"github.com/unidoc/unipdf/v3/model"
	"go.uber.org/zap"

	apperrors "github.com/eduhub/tutor-go/internal/errors"
	"github.com/eduhub/tutor-go/internal/logger"
)

// Extractor 文档文本提取接口
type Extractor interface {
	Extract(data []byte, source string) ([]TextUnit, error)
}

// PDFExtractor 基于unipdf的PDF文本提取器
type PDFExtractor struct {
	logger *zap.Logger
}

// NewPDFExtractor 创建PDF文本提取器
func NewPDFExtractor() *PDFExtractor {
	return &PDFExtractor{logger: logger.GetLogger()}
}

// Extract 逐页提取文本，单页失败跳过。
// 整份文档无法解析时返回业务错误；全部页面为空白不算错误，
// 返回空序列，由建索引阶段判定语料为空。
func (e *PDFExtractor) Extract(data []byte, source string) ([]TextUnit, error) {
	pdfReader, err := model.NewPdfReader(bytes.NewReader(data))
	if err != nil {
		return nil, apperrors.NewUnreadableDocument().WithCause(err)
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		return nil, apperrors.NewUnreadableDocument().WithCause(err)
	}

	var units []TextUnit
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			e.logger.Warn("Skipping unreadable page", zap.String("source", source), zap.Int("page", i), zap.Error(err))
			continue
		}

		ex, err := extractor.New(page)
		if err != nil {
			e.logger.Warn("Skipping page, extractor init failed", zap.String("source", source), zap.Int("page", i), zap.Error(err))
			continue
		}

		text, err := ex.ExtractText()
		if err != nil {
			e.logger.Warn("Skipping page, text extraction failed", zap.String("source", source), zap.Int("page", i), zap.Error(err))
			continue
		}

		if strings.TrimSpace(text) == "" {
			continue
		}

		units = append(units, TextUnit{
			Content: strings.TrimSpace(text),
			Page:    i,
			Source:  source,
		})
	}

	e.logger.Info("Document text extracted",
		zap.String("source", source),
		zap.Int("pages", numPages),
		zap.Int("units", len(units)))
	return units, nil
}
