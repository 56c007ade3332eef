// Package transcript projects conversation state into a flat,
// display-ready sequence of utterance pairs. The projection is
// deterministic and fail-soft: a malformed block is logged and
// skipped so the rest of the transcript still renders.
package transcript

import (
	"encoding/base64"
	"fmt"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"cutui/config"
	"cutui/model"
)

// Utterance is one renderable unit: either text or a reference to a
// persisted image file.
type Utterance struct {
	Text      string
	ImagePath string
}

// Pair is one row of the two-column transcript: the user's side on the
// left, the assistant/tool side on the right. Exactly one side is set.
type Pair struct {
	User      *Utterance
	Assistant *Utterance
}

// ImageSaver persists a decoded image and returns the path a rendered
// transcript should reference.
type ImageSaver interface {
	SavePNG(data []byte) (string, error)
}

// Options are the per-projection display switches.
type Options struct {
	HideImages bool
}

// Projector converts conversation snapshots into pairs. It is pure
// apart from the image persistence side effect, which goes through the
// injected ImageSaver.
type Projector struct {
	images ImageSaver
	log    *logrus.Entry
}

// New returns a projector. A nil log entry falls back to the shared
// application logger.
func New(images ImageSaver, log *logrus.Entry) *Projector {
	if log == nil {
		log = config.Log.WithField("component", "transcript")
	}
	return &Projector{images: images, log: log}
}

// Project maps a conversation snapshot to display pairs in store
// order. Only the first block of each turn is rendered; additional
// blocks are flagged in the log rather than silently dropped or
// rendered, since upstream maintains a single-block-per-turn shape.
func (p *Projector) Project(turns []model.Turn, opts Options) []Pair {
	pairs := make([]Pair, 0, len(turns))
	for i, turn := range turns {
		if len(turn.Blocks) == 0 {
			// Unreachable through the store's append validation.
			p.log.WithField("turn", i).Warn("turn has no content, skipping")
			continue
		}
		if len(turn.Blocks) > 1 {
			p.log.WithFields(logrus.Fields{"turn": i, "blocks": len(turn.Blocks)}).
				Debug("only first block of multi-block turn is rendered")
		}

		utt, fromUser, ok := p.renderBlock(turn.Role, turn.Blocks[0], opts)
		if !ok {
			continue
		}
		if fromUser {
			pairs = append(pairs, Pair{User: utt})
		} else {
			pairs = append(pairs, Pair{Assistant: utt})
		}
	}
	return pairs
}

// RenderAssistantBlock renders a single assistant-side block using the
// same rules Project applies, for incremental display while the agent
// loop is still running. A nil result means the block contributes
// nothing.
func (p *Projector) RenderAssistantBlock(b model.Block, opts Options) *Utterance {
	utt, _, ok := p.renderBlock(model.RoleAssistant, b, opts)
	if !ok {
		return nil
	}
	return utt
}

func (p *Projector) renderBlock(role model.Role, b model.Block, opts Options) (*Utterance, bool, bool) {
	switch v := b.(type) {
	case model.TextBlock:
		return &Utterance{Text: v.Text}, role == model.RoleUser, true

	case model.ToolUseBlock:
		text := fmt.Sprintf("Tool Use: %s\nInput: %s", v.Name, formatInput(v.Input))
		return &Utterance{Text: text}, false, true

	case model.ToolResultBlock:
		return p.renderToolResult(v, opts)

	case model.RawBlock:
		p.log.WithField("payload", v.Payload).Warn("unrecognized content block, skipping")
		return nil, false, false

	default:
		p.log.WithField("kind", b.Kind()).Warn("unknown block variant, skipping")
		return nil, false, false
	}
}

func (p *Projector) renderToolResult(v model.ToolResultBlock, opts Options) (*Utterance, bool, bool) {
	imageOnly := v.Output == "" && v.Error == "" && v.Base64Image != ""

	switch {
	case opts.HideImages && imageOnly:
		return nil, false, false

	case v.Output != "":
		return &Utterance{Text: v.Output}, false, true

	case v.Error != "":
		return &Utterance{Text: "Error: " + v.Error}, false, true

	case v.Base64Image != "" && !opts.HideImages:
		path, err := p.saveImage(v.Base64Image)
		if err != nil {
			p.log.WithError(err).Warn("could not persist tool result image, skipping")
			return nil, false, false
		}
		return &Utterance{ImagePath: path}, false, true

	default:
		return nil, false, false
	}
}

func (p *Projector) saveImage(encoded string) (string, error) {
	// Screenshots sometimes arrive as data URIs; only the payload is
	// base64.
	if strings.HasPrefix(encoded, "data:image") {
		if _, rest, found := strings.Cut(encoded, ","); found {
			encoded = rest
		}
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return "", fmt.Errorf("decode image: %w", err)
	}
	if p.images == nil {
		return "", fmt.Errorf("no image store configured")
	}
	path, err := p.images.SavePNG(data)
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return path, nil
}

// formatInput renders tool arguments as a stable key/value listing:
// "{}" when empty, otherwise "{key: value, ...}" with sorted keys so
// projection output is byte-for-byte repeatable.
func formatInput(input map[string]any) string {
	if len(input) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(input))
	for k := range input {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteString(", ")
		}
		fmt.Fprintf(&sb, "%s: %v", k, input[k])
	}
	sb.WriteByte('}')
	return sb.String()
}
