package services

import (
	"fmt"
	"strings"

	"github.com/padeliga/league-system/models"
	"github.com/padeliga/league-system/storage"
)

func populateCategoryPosterURL(category *models.Category, uploader storage.FileUploader) {
	if category == nil || uploader == nil {
		return
	}
	if category.PosterKey != nil && *category.PosterKey != "" {
		url := uploader.GetPublicURL(*category.PosterKey)
		if url != "" {
			category.PosterURL = &url
		}
	}
}

// GetExtensionFromContentType возвращает расширение файла для известных
// image/* типов; используется при формировании ключа постера.
func GetExtensionFromContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	default:
		parts := strings.Split(contentType, "/")
		if len(parts) == 2 && strings.HasPrefix(parts[0], "image") && parts[1] != "" {
			// Убираем возможные суффиксы типа "+xml" ("image/svg+xml")
			return "." + strings.Split(parts[1], "+")[0], nil
		}
		return "", fmt.Errorf("could not determine file extension from content type: '%s'", contentType)
	}
}
