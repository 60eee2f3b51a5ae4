package codec

import (
	"net/url"
	"path"
	"strings"

	"github.com/gobwas/glob"
	"github.com/naviohq/navio/internal/types"
)

var extensionTypes = map[string]types.AttachmentType{
	"pdf":  types.AttachmentPDF,
	"png":  types.AttachmentImage,
	"jpg":  types.AttachmentImage,
	"jpeg": types.AttachmentImage,
	"gif":  types.AttachmentImage,
	"webp": types.AttachmentImage,
	"svg":  types.AttachmentImage,
	"heic": types.AttachmentImage,
	"mp4":  types.AttachmentVideo,
	"mov":  types.AttachmentVideo,
	"avi":  types.AttachmentVideo,
	"webm": types.AttachmentVideo,
	"mkv":  types.AttachmentVideo,
	"zip":  types.AttachmentArchive,
	"rar":  types.AttachmentArchive,
	"7z":   types.AttachmentArchive,
	"tar":  types.AttachmentArchive,
	"gz":   types.AttachmentArchive,
	"doc":  types.AttachmentDoc,
	"docx": types.AttachmentDoc,
	"txt":  types.AttachmentDoc,
	"rtf":  types.AttachmentDoc,
	"odt":  types.AttachmentDoc,
	"xls":  types.AttachmentSheet,
	"xlsx": types.AttachmentSheet,
	"csv":  types.AttachmentSheet,
	"ods":  types.AttachmentSheet,
	"ppt":  types.AttachmentSlides,
	"pptx": types.AttachmentSlides,
	"odp":  types.AttachmentSlides,
}

// driveHosts marks document-hosting domains whose links carry
// provider="drive".
var driveHosts = []glob.Glob{
	glob.MustCompile("drive.google.com"),
	glob.MustCompile("docs.google.com"),
	glob.MustCompile("*.googleusercontent.com"),
}

// InferType classifies an attachment by file extension, case-insensitive.
// Unknown or missing extensions yield the generic "file" type.
func InferType(name string) types.AttachmentType {
	ext := strings.TrimPrefix(strings.ToLower(path.Ext(name)), ".")
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return types.AttachmentFile
}

// InferProvider tags attachments hosted on a recognized document domain.
func InferProvider(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	for _, g := range driveHosts {
		if g.Match(host) {
			return "drive"
		}
	}
	return ""
}

// NewAttachment builds an attachment record with inferred type and provider.
func NewAttachment(name, url string) types.Attachment {
	return types.Attachment{
		Name:     name,
		URL:      url,
		Type:     InferType(name),
		Provider: InferProvider(url),
	}
}

// attachmentLine renders one trailer item: "[name](url)" when a URL is
// present and the name is bracket-safe, otherwise the bare name.
func attachmentLine(a types.Attachment) string {
	if a.URL != "" && !strings.ContainsAny(a.Name, "[]()") {
		return "[" + a.Name + "](" + a.URL + ")"
	}
	return a.Name
}

// parseAttachmentLine inverts attachmentLine. Lines that parse as neither
// form are dropped by the caller.
func parseAttachmentLine(line string) (types.Attachment, bool) {
	if line == "" {
		return types.Attachment{}, false
	}
	if strings.HasPrefix(line, "[") {
		if end := strings.Index(line, "]("); end > 0 && strings.HasSuffix(line, ")") {
			name := line[1:end]
			url := line[end+2 : len(line)-1]
			if name != "" {
				return NewAttachment(name, url), true
			}
			return types.Attachment{}, false
		}
	}
	return NewAttachment(line, ""), true
}
