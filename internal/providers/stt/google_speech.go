package stt

import (
	"context"
	"strings"

	speech "cloud.google.com/go/speech/apiv1"
	speechpb "cloud.google.com/go/speech/apiv1/speechpb"
	"google.golang.org/api/option"

	"github.com/pollyhq/pollycoach/internal/analysis"
)

type GoogleSpeech struct {
	c *speech.Client

	Encoding     speechpb.RecognitionConfig_AudioEncoding
	SampleRateHz int32
}

func NewGoogleSpeech(ctx context.Context, opts ...option.ClientOption) (*GoogleSpeech, error) {
	c, err := speech.NewClient(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return &GoogleSpeech{
		c:            c,
		Encoding:     speechpb.RecognitionConfig_WEBM_OPUS,
		SampleRateHz: 48000,
	}, nil
}

func (g *GoogleSpeech) Close() error { return g.c.Close() }

// Transcribe recognizes the full recording in one request. Word time
// offsets are folded into per-result segments so downstream pause analysis
// has start/end boundaries to work with.
func (g *GoogleSpeech) Transcribe(ctx context.Context, audio []byte, language string) (analysis.Transcript, error) {
	if language == "" {
		language = "en-US"
	}

	resp, err := g.c.Recognize(ctx, &speechpb.RecognizeRequest{
		Config: &speechpb.RecognitionConfig{
			Encoding:                   g.Encoding,
			SampleRateHertz:            g.SampleRateHz,
			LanguageCode:               language,
			EnableAutomaticPunctuation: true,
			EnableWordTimeOffsets:      true,
		},
		Audio: &speechpb.RecognitionAudio{
			AudioSource: &speechpb.RecognitionAudio_Content{Content: audio},
		},
	})
	if err != nil {
		return analysis.Transcript{}, err
	}

	var (
		parts    []string
		segments []analysis.Segment
		duration float64
	)

	for _, r := range resp.Results {
		if len(r.Alternatives) == 0 {
			continue
		}
		alt := r.Alternatives[0]
		if alt.Transcript == "" {
			continue
		}
		parts = append(parts, strings.TrimSpace(alt.Transcript))

		if len(alt.Words) > 0 {
			start := alt.Words[0].StartTime.AsDuration().Seconds()
			end := alt.Words[len(alt.Words)-1].EndTime.AsDuration().Seconds()
			segments = append(segments, analysis.Segment{Start: start, End: end})
			if end > duration {
				duration = end
			}
		}
	}

	return analysis.Transcript{
		Text:     strings.Join(parts, " "),
		Segments: segments,
		Duration: duration,
	}, nil
}
