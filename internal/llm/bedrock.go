package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime/types"
	"github.com/aws/smithy-go"
)

// bedrockAPI is the subset of the Bedrock runtime client the endpoint uses.
type bedrockAPI interface {
	InvokeModel(ctx context.Context, params *bedrockruntime.InvokeModelInput, optFns ...func(*bedrockruntime.Options)) (*bedrockruntime.InvokeModelOutput, error)
}

// BedrockEndpoint sends requests to Amazon Bedrock's InvokeModel API.
type BedrockEndpoint struct {
	client bedrockAPI
}

// NewBedrockEndpoint builds a client from the default AWS credential chain.
// SDK-level retries are disabled: Invoker owns the retry policy.
func NewBedrockEndpoint(ctx context.Context, region string, timeout time.Duration) (*BedrockEndpoint, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
		awsconfig.WithRetryer(func() aws.Retryer { return aws.NopRetryer{} }),
	}
	if timeout > 0 {
		opts = append(opts, awsconfig.WithHTTPClient(awshttp.NewBuildableClient().WithTimeout(timeout)))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return &BedrockEndpoint{client: bedrockruntime.NewFromConfig(cfg)}, nil
}

func newBedrockEndpointWithClient(client bedrockAPI) *BedrockEndpoint {
	return &BedrockEndpoint{client: client}
}

func (e *BedrockEndpoint) Send(ctx context.Context, req Request) ([]byte, error) {
	out, err := e.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     aws.String(req.ModelID),
		ContentType: aws.String(req.ContentType),
		Accept:      aws.String(req.Accept),
		Body:        req.Body,
	})
	if err != nil {
		return nil, classifyBedrockError(err)
	}
	return out.Body, nil
}

func classifyBedrockError(err error) error {
	var throttle *types.ThrottlingException
	if errors.As(err, &throttle) {
		return &ThrottlingError{Cause: err}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "ThrottlingException" {
		return &ThrottlingError{Cause: err}
	}

	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) && respErr.HTTPStatusCode() == http.StatusTooManyRequests {
		return &ThrottlingError{Cause: err}
	}

	return fmt.Errorf("bedrock invoke model: %w", err)
}
