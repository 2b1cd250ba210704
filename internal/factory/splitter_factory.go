package factory

import (
	"go.uber.org/zap"

	"github.com/jmohr/mailcast/internal/utils"
)

// TextSplitterFactory creates text splitters
type TextSplitterFactory struct {
	logger *zap.Logger
}

// NewTextSplitterFactory creates a new TextSplitterFactory
func NewTextSplitterFactory(logger *zap.Logger) *TextSplitterFactory {
	return &TextSplitterFactory{
		logger: logger,
	}
}

// CreateTextSplitter creates a new TextSplitter
func (f *TextSplitterFactory) CreateTextSplitter() *utils.TextSplitter {
	return utils.NewTextSplitter(f.logger)
}
