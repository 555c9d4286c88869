package rekognition

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"
	"github.com/saransh1220/snaplabel/internal/modules/analysis/domain"
)

// API is the subset of the Rekognition client the detector uses.
type API interface {
	DetectLabels(ctx context.Context, params *rekognition.DetectLabelsInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectLabelsOutput, error)
}

// Detector runs Amazon Rekognition DetectLabels against the uploaded S3 object.
type Detector struct {
	client API
}

// New loads the default AWS configuration for region.
func New(ctx context.Context, region string) (*Detector, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}
	return NewWithClient(rekognition.NewFromConfig(awsCfg)), nil
}

func NewWithClient(client API) *Detector {
	return &Detector{client: client}
}

func (d *Detector) Name() string { return "rekognition" }

func (d *Detector) DetectLabels(ctx context.Context, req domain.DetectRequest) ([]domain.Label, error) {
	out, err := d.client.DetectLabels(ctx, &rekognition.DetectLabelsInput{
		Image: &types.Image{
			S3Object: &types.S3Object{
				Bucket: aws.String(req.Bucket),
				Name:   aws.String(req.Key),
			},
		},
		MaxLabels:     aws.Int32(req.MaxLabels),
		MinConfidence: aws.Float32(req.MinConfidence),
	})
	if err != nil {
		return nil, err
	}

	labels := make([]domain.Label, 0, len(out.Labels))
	for _, l := range out.Labels {
		labels = append(labels, domain.Label{
			Name:       aws.ToString(l.Name),
			Confidence: float64(aws.ToFloat32(l.Confidence)),
		})
	}
	return labels, nil
}
