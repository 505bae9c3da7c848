package service

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/popeskul/wa-inbox/internal/models"
)

const (
	placeholderImage       = "[Image]"
	placeholderVideo       = "[Video]"
	placeholderAudio       = "[Audio]"
	placeholderDocument    = "[Document]"
	placeholderSticker     = "[Sticker]"
	placeholderLocation    = "[Location]"
	placeholderContact     = "[Contact]"
	placeholderTemplate    = "[Template]"
	placeholderUnsupported = "[Unsupported message]"

	previewMaxRunes = 100
	previewEllipsis = "…"
)

// placeholder names the kind of a message that has no text to show.
func placeholder(kind string) string {
	kind = strings.ToLower(kind)
	switch {
	case strings.Contains(kind, "sticker") || kind == "image/webp":
		return placeholderSticker
	case strings.HasPrefix(kind, "image"):
		return placeholderImage
	case strings.HasPrefix(kind, "video"):
		return placeholderVideo
	case strings.HasPrefix(kind, "audio"), kind == "voice", kind == "ptt":
		return placeholderAudio
	case kind == "contact", kind == "contacts", kind == "text/vcard", kind == "text/x-vcard":
		return placeholderContact
	case strings.HasPrefix(kind, "application"), strings.HasPrefix(kind, "text/"), kind == "document", kind == "file":
		return placeholderDocument
	case kind == "location":
		return placeholderLocation
	case kind == "template":
		return placeholderTemplate
	default:
		return placeholderUnsupported
	}
}

// mediaProxyURL substitutes ids into the authenticated media proxy template.
func mediaProxyURL(template, conversationID, mediaID string) string {
	return strings.NewReplacer(
		"{conversation_id}", conversationID,
		"{media_id}", mediaID,
	).Replace(template)
}

// providerMedia rebuilds dashboard-reachable media references for a provider message.
func providerMedia(template, conversationID string, msg *models.ProviderMessage) []models.Media {
	media := make([]models.Media, 0, len(msg.Media))
	for _, m := range msg.Media {
		if m.SID == "" {
			continue
		}
		media = append(media, models.Media{
			URL:         mediaProxyURL(template, conversationID, m.SID),
			ContentType: m.ContentType,
			Filename:    m.Filename,
		})
	}

	if len(media) == 0 && isProxyURL(template, msg.Attributes.MediaURL) {
		media = append(media, models.Media{
			URL:         msg.Attributes.MediaURL,
			ContentType: msg.Attributes.MediaType,
			Filename:    msg.Attributes.Filename,
		})
	}
	return media
}

// isProxyURL reports whether raw already points at the media proxy the template
// describes. Anything else is a provider URL the browser cannot use.
func isProxyURL(template, raw string) bool {
	if raw == "" {
		return false
	}
	prefix, _, ok := strings.Cut(template, "{")
	if !ok || prefix == "" {
		return false
	}
	return strings.HasPrefix(raw, prefix)
}

// providerMediaKind guesses what an empty provider message carried.
func providerMediaKind(msg *models.ProviderMessage) string {
	if msg.Attributes.MediaType != "" {
		return msg.Attributes.MediaType
	}
	if len(msg.Media) > 0 {
		return msg.Media[0].ContentType
	}
	return ""
}

// localView converts a stored row, naming rows that carry neither text nor media.
func localView(row *models.Message) models.MessageView {
	view := row.View()
	if strings.TrimSpace(view.Content) == "" && len(view.Media) == 0 {
		view.Content = placeholder("")
	}
	return view
}

// previewText is the one-line text shown in the conversation list. It is
// empty only when there is neither text nor media.
func previewText(content string, media []models.Media) string {
	if content = strings.TrimSpace(content); content != "" {
		return truncateRunes(content, previewMaxRunes)
	}
	if len(media) > 0 {
		return placeholder(media[0].ContentType)
	}
	return ""
}

// truncateRunes cuts s to at most limit runes, marking the cut with an ellipsis.
func truncateRunes(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return strings.TrimRightFunc(string(runes[:limit]), unicode.IsSpace) + previewEllipsis
}
