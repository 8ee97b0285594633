package voiceover

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"

	goerrors "github.com/goliatone/go-errors"
	"google.golang.org/genai"
)

// DefaultSpeechModel is the Gemini TTS model used for narration audio.
const DefaultSpeechModel = "gemini-2.5-flash-preview-tts"

// DefaultVoice is the prebuilt voice used for narration.
const DefaultVoice = "Kore"

// Gemini TTS returns raw 16-bit mono PCM at 24kHz.
const (
	pcmSampleRate = 24000
	pcmChannels   = 1
	pcmBitDepth   = 16
)

// SpeechGenerator reads narrations aloud with the Gemini TTS model.
type SpeechGenerator struct {
	client *genai.Client
	model  string
	voice  string
	logger Logger
}

// NewSpeechGenerator creates a generator backed by the Google GenAI API.
func NewSpeechGenerator(ctx context.Context, apiKey, model, voice string) (*SpeechGenerator, error) {
	if apiKey == "" {
		return nil, goerrors.New("google api key is required", goerrors.CategoryBadInput)
	}

	if model == "" {
		model = DefaultSpeechModel
	}

	if voice == "" {
		voice = DefaultVoice
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to create genai client")
	}

	return &SpeechGenerator{
		client: client,
		model:  model,
		voice:  voice,
		logger: defLogger{},
	}, nil
}

func (g *SpeechGenerator) WithLogger(logger Logger) *SpeechGenerator {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// GenerateAudioBase64 speaks the narration and returns a base64 encoded
// WAV file, ready to drop into an <audio> element.
func (g *SpeechGenerator) GenerateAudioBase64(ctx context.Context, narration string) (string, error) {
	if narration == "" {
		return "", goerrors.New("narration is required", goerrors.CategoryBadInput)
	}

	contents := []*genai.Content{
		genai.NewContentFromText(narration, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{"AUDIO"},
		SpeechConfig: &genai.SpeechConfig{
			VoiceConfig: &genai.VoiceConfig{
				PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{
					VoiceName: g.voice,
				},
			},
		},
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryOperation, "voiceover generation failed")
	}

	var pcm []byte
	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				pcm = part.InlineData.Data
				break
			}
		}
	}

	if len(pcm) == 0 {
		return "", goerrors.New("no audio data found in response", goerrors.CategoryOperation).
			WithTextCode("NO_AUDIO_DATA")
	}

	wav := wrapPCMInWAV(pcm, pcmSampleRate, pcmChannels, pcmBitDepth)
	return base64.StdEncoding.EncodeToString(wav), nil
}

// wrapPCMInWAV prepends a RIFF/WAVE header to raw PCM samples.
func wrapPCMInWAV(pcm []byte, sampleRate, channels, bitDepth int) []byte {
	byteRate := sampleRate * channels * bitDepth / 8
	blockAlign := channels * bitDepth / 8

	buf := &bytes.Buffer{}

	buf.WriteString("RIFF")
	binary.Write(buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(buf, binary.LittleEndian, uint32(16))
	binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM format
	binary.Write(buf, binary.LittleEndian, uint16(channels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(byteRate))
	binary.Write(buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(buf, binary.LittleEndian, uint16(bitDepth))

	buf.WriteString("data")
	binary.Write(buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
