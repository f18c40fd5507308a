package combine

import (
	"strings"

	"eazypaste/pkg/filter"

	"go.uber.org/zap"
)

// ReadFileAsText returns the whole file as text, or "" when it cannot be read.
// Failures are logged, never returned.
func ReadFileAsText(path string, reader filter.ContentReader, logger *zap.Logger) string {
	if reader == nil {
		reader = filter.DiskReader{}
	}
	content, err := reader.ReadFileAsText(path)
	if err != nil {
		logger.Warn("Failed to read file", zap.String("filePath", path), zap.Error(err))
		return ""
	}
	return content
}

// sectionHeader formats the header line block for a titled section.
func sectionHeader(title string) string {
	return "\n" + SeparatorLine + "\n# " + title + " #\n\n"
}

// ProcessSingleFile reads a file and formats it as a prompt section.
func ProcessSingleFile(filePath, root string, reader filter.ContentReader, logger *zap.Logger) FileContent {
	relativePath := RelativePath(root, filePath)
	logger.Debug("Processing file",
		zap.String("filePath", filePath),
		zap.String("relativePath", relativePath))

	content := ReadFileAsText(filePath, reader, logger)
	if content != "" && !strings.HasSuffix(content, "\n") {
		content += "\n"
	}

	return FileContent{
		Path:    relativePath,
		Content: sectionHeader("Source: "+relativePath) + content,
	}
}
