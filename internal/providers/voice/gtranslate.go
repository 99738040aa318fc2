package voice

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/rs/zerolog"
	"golang.org/x/text/language"

	"reelsmaker/internal/domain"
	"reelsmaker/internal/infra"
)

const (
	translateRPCID      = "jQ1olc"
	translateRPCPath    = "/_/TranslateWebserverUi/data/batchexecute"
	defaultTranslateURL = "https://translate.google.com"
	maxTokenRunes       = 100
)

var audioPayloadRegexp = regexp.MustCompile(`jQ1olc","\[\\"(.*?)\\"]`)

// TranslateOptions configures the Google Translate speech client.
type TranslateOptions struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *infra.Logger
}

// TranslateSynthesizer speaks through the Google Translate web TTS RPC. The
// engine limits each call to roughly 100 characters, so text is tokenized
// and the resulting MP3 segments are concatenated.
type TranslateSynthesizer struct {
	baseURL    string
	httpClient *http.Client
	logger     *infra.Logger
}

// NewTranslateSynthesizer constructs a client with sane defaults.
func NewTranslateSynthesizer(opts TranslateOptions) *TranslateSynthesizer {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultTranslateURL
	}
	logger := opts.Logger
	if logger == nil {
		l := infra.Logger(zerolog.Nop())
		logger = &l
	}
	return &TranslateSynthesizer{baseURL: baseURL, httpClient: client, logger: logger}
}

// Synthesize returns the narration for req. Any failure is reported as
// domain.ErrSynthesis; partial audio is never returned.
func (s *TranslateSynthesizer) Synthesize(ctx context.Context, req Request) (*Audio, error) {
	text := TruncateScript(strings.TrimSpace(req.Text))
	tokens := Tokenize(text, maxTokenRunes)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: no text to speak", domain.ErrSynthesis)
	}
	lang := SpeechLanguage(req.Locale)
	slow := req.Style.Slow()

	var out bytes.Buffer
	for i, token := range tokens {
		chunk, err := s.speak(ctx, token, lang, slow)
		if err != nil {
			s.logger.Error().Err(err).Int("token", i).Str("lang", lang).Msg("voice: synthesis failed")
			return nil, fmt.Errorf("%w: %v", domain.ErrSynthesis, err)
		}
		out.Write(chunk)
	}
	s.logger.Debug().Int("tokens", len(tokens)).Int("bytes", out.Len()).Bool("slow", slow).Msg("voice: synthesized")
	return &Audio{Data: out.Bytes(), Format: FormatMPEG}, nil
}

func (s *TranslateSynthesizer) speak(ctx context.Context, text, lang string, slow bool) ([]byte, error) {
	body, err := buildRPCBody(text, lang, slow)
	if err != nil {
		return nil, err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+translateRPCPath, strings.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/x-www-form-urlencoded;charset=utf-8")
	httpReq.Header.Set("Referer", s.baseURL+"/")
	httpReq.Header.Set("User-Agent", "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tts status %s: %s", resp.Status, strings.TrimSpace(string(snippet)))
	}
	return extractAudio(resp.Body)
}

func buildRPCBody(text, lang string, slow bool) (string, error) {
	var speed any
	if slow {
		speed = true
	}
	param, err := json.Marshal([]any{text, lang, speed, "null"})
	if err != nil {
		return "", err
	}
	rpc, err := json.Marshal([]any{[]any{[]any{translateRPCID, string(param), nil, "generic"}}})
	if err != nil {
		return "", err
	}
	return "f.req=" + url.QueryEscape(string(rpc)) + "&", nil
}

func extractAudio(r io.Reader) ([]byte, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.Contains(line, translateRPCID) {
			continue
		}
		m := audioPayloadRegexp.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		data, err := base64.StdEncoding.DecodeString(m[1])
		if err != nil {
			return nil, fmt.Errorf("decode audio: %w", err)
		}
		return data, nil
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("no audio found in tts response")
}

// SpeechLanguage reduces a locale such as "id-ID" to the base language code
// the engine expects, defaulting to English.
func SpeechLanguage(locale string) string {
	tag, err := language.Parse(strings.TrimSpace(locale))
	if err != nil || tag == language.Und {
		return "en"
	}
	base, _ := tag.Base()
	return base.String()
}

// Tokenize splits text at sentence punctuation and then packs words into
// pieces of at most limit runes. Words longer than limit are hard-cut.
func Tokenize(text string, limit int) []string {
	var tokens []string
	for _, sentence := range splitOnPunctuation(text) {
		var current []rune
		for _, word := range strings.Fields(sentence) {
			w := []rune(word)
			for len(w) > limit {
				if len(current) > 0 {
					tokens = append(tokens, string(current))
					current = nil
				}
				tokens = append(tokens, string(w[:limit]))
				w = w[limit:]
			}
			if len(w) == 0 {
				continue
			}
			switch {
			case len(current) == 0:
				current = w
			case len(current)+1+len(w) <= limit:
				current = append(append(current, ' '), w...)
			default:
				tokens = append(tokens, string(current))
				current = w
			}
		}
		if len(current) > 0 {
			tokens = append(tokens, string(current))
		}
	}
	return tokens
}

func splitOnPunctuation(text string) []string {
	var parts []string
	var b strings.Builder
	for _, r := range text {
		b.WriteRune(r)
		if r == ';' || r == ':' || r == '\n' || unicode.Is(unicode.Sentence_Terminal, r) {
			if s := strings.TrimSpace(b.String()); s != "" {
				parts = append(parts, s)
			}
			b.Reset()
		}
	}
	if s := strings.TrimSpace(b.String()); s != "" {
		parts = append(parts, s)
	}
	return parts
}

var _ Synthesizer = (*TranslateSynthesizer)(nil)
