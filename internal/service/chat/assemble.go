package chat

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	"github.com/zhouzirui/path-finder/backend/internal/logger"
	"github.com/zhouzirui/path-finder/backend/internal/model/chat"
)

var ErrNoResolver = errors.New("message has attachments but no file resolver is configured")

// FileResolver turns an attachment reference into its bytes.
type FileResolver interface {
	Resolve(ctx context.Context, ref chat.FileRef) ([]byte, error)
}

// Assemble converts persisted turns plus the new user message into the ordered context list
// for a generation call: user, model, user, model, ..., new user. Attachments are resolved to
// inline data on every call and never written back to the turns.
//
// An attachment of the new message that cannot be resolved fails the call. One from an earlier
// turn is logged and replaced by a text placeholder so an expired file never locks the channel.
func Assemble(ctx context.Context, resolver FileResolver, turns []chat.Turn, newUser chat.Message, log *logger.Logger) ([]*schema.Message, error) {
	if log == nil {
		log = logger.NewNop()
	}

	out := make([]*schema.Message, 0, len(turns)*2+1)
	for i, turn := range turns {
		user, err := userMessage(ctx, resolver, turn.User, func(ref chat.FileRef, err error) {
			log.Warn("historic attachment unavailable", "turn", i, "uri", ref.URI, "mime", ref.MIMEType, "error", err)
		})
		if err != nil {
			return nil, fmt.Errorf("turn %d: %w", i, err)
		}
		out = append(out, user, modelMessage(turn.Model))
	}

	user, err := userMessage(ctx, resolver, newUser, nil)
	if err != nil {
		return nil, err
	}
	return append(out, user), nil
}

// UnavailablePlaceholder is the text that stands in for a historic attachment that could not
// be resolved.
func UnavailablePlaceholder(mimeType string) string {
	return "[attachment unavailable: " + mimeType + "]"
}

// userMessage converts one user message. When degrade is nil every resolve failure is returned;
// otherwise degrade is told about it and the part becomes a placeholder.
func userMessage(ctx context.Context, resolver FileResolver, msg chat.Message, degrade func(chat.FileRef, error)) (*schema.Message, error) {
	if !msg.HasFiles() {
		return schema.UserMessage(msg.Text()), nil
	}
	if resolver == nil && degrade == nil {
		return nil, ErrNoResolver
	}

	parts := make([]schema.ChatMessagePart, 0, len(msg.Parts))
	for _, p := range msg.Parts {
		if !p.IsFile() {
			if p.Text != "" {
				parts = append(parts, schema.ChatMessagePart{Type: schema.ChatMessagePartTypeText, Text: p.Text})
			}
			continue
		}

		data, err := resolve(ctx, resolver, *p.FileRef)
		if err != nil {
			if degrade == nil {
				return nil, fmt.Errorf("resolve attachment %s: %w", p.FileRef.URI, err)
			}
			degrade(*p.FileRef, err)
			parts = append(parts, schema.ChatMessagePart{Type: schema.ChatMessagePartTypeText, Text: UnavailablePlaceholder(p.FileRef.MIMEType)})
			continue
		}
		parts = append(parts, inlinePart(p.FileRef.MIMEType, data))
	}

	return &schema.Message{Role: schema.User, MultiContent: parts}, nil
}

func resolve(ctx context.Context, resolver FileResolver, ref chat.FileRef) ([]byte, error) {
	if resolver == nil {
		return nil, ErrNoResolver
	}
	return resolver.Resolve(ctx, ref)
}

func inlinePart(mimeType string, data []byte) schema.ChatMessagePart {
	dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
	if strings.HasPrefix(strings.ToLower(mimeType), "image/") {
		return schema.ChatMessagePart{
			Type:     schema.ChatMessagePartTypeImageURL,
			ImageURL: &schema.ChatMessageImageURL{URL: dataURL, MIMEType: mimeType},
		}
	}
	return schema.ChatMessagePart{
		Type:    schema.ChatMessagePartTypeFileURL,
		FileURL: &schema.ChatMessageFileURL{URL: dataURL, MIMEType: mimeType},
	}
}

func modelMessage(msg chat.Message) *schema.Message {
	return schema.AssistantMessage(msg.Text(), nil)
}
