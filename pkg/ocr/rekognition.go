package ocr

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
)

// TextReader extracts printed text from an image.
type TextReader interface {
	ReadText(ctx context.Context, image []byte) (string, error)
}

// detectTextAPI is the slice of the Rekognition client we use.
type detectTextAPI interface {
	DetectText(ctx context.Context, params *rekognition.DetectTextInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectTextOutput, error)
}

// minConfidence drops lines Rekognition is unsure about.
const minConfidence float32 = 70

type RekognitionReader struct {
	client detectTextAPI
}

var _ TextReader = (*RekognitionReader)(nil)

func NewRekognitionReader(ctx context.Context, region string) (*RekognitionReader, error) {
	if region == "" {
		return nil, errors.New("AWS region is required for rekognition")
	}
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &RekognitionReader{client: rekognition.NewFromConfig(cfg)}, nil
}

// ReadText returns the detected lines joined by newlines, top to bottom.
func (r *RekognitionReader) ReadText(ctx context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", errors.New("empty image")
	}

	out, err := r.client.DetectText(ctx, &rekognition.DetectTextInput{
		Image: &types.Image{Bytes: image},
	})
	if err != nil {
		return "", fmt.Errorf("rekognition detect text: %w", err)
	}

	var lines []string
	for _, d := range out.TextDetections {
		if d.Type != types.TextTypesLine {
			continue
		}
		if d.Confidence != nil && *d.Confidence < minConfidence {
			continue
		}
		if text := strings.TrimSpace(aws.ToString(d.DetectedText)); text != "" {
			lines = append(lines, text)
		}
	}
	return strings.Join(lines, "\n"), nil
}
