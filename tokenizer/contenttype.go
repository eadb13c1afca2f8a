package tokenizer

import (
	"fmt"
	"strings"
)

// ContentType tags the output stream with the nature of the original
// content. When set, its token is written big-endian before any chunk
// output. Token values live in a reserved range above every mergeable
// token.
type ContentType int

const (
	ContentTypeNone ContentType = iota
	ContentTypeText
	ContentTypeAudio
	ContentTypeBinary
	ContentTypeVideo
)

func ParseContentType(s string) (ContentType, error) {
	switch strings.ToLower(s) {
	case "":
		return ContentTypeNone, nil
	case "text":
		return ContentTypeText, nil
	case "audio":
		return ContentTypeAudio, nil
	case "bin", "binary":
		return ContentTypeBinary, nil
	case "video":
		return ContentTypeVideo, nil
	default:
		return ContentTypeNone, fmt.Errorf("unknown content type %q (expected text, audio, bin, or video)", s)
	}
}

// Token returns the reserved marker value for the content type.
func (ct ContentType) Token() uint16 {
	switch ct {
	case ContentTypeText:
		return 0xFF01
	case ContentTypeAudio:
		return 0xFF02
	case ContentTypeBinary:
		return 0xFF03
	case ContentTypeVideo:
		return 0xFF04
	default:
		return 0
	}
}

func (ct ContentType) String() string {
	switch ct {
	case ContentTypeText:
		return "text"
	case ContentTypeAudio:
		return "audio"
	case ContentTypeBinary:
		return "bin"
	case ContentTypeVideo:
		return "video"
	default:
		return "none"
	}
}
