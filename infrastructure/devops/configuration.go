package devops

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

var (
	mu     sync.Mutex
	cached = map[string][]byte{}
)

// LoadParameter fetches a decrypted SSM parameter. Values are cached per name
// for the life of the process.
func LoadParameter(ctx context.Context, name string) ([]byte, error) {
	mu.Lock()
	defer mu.Unlock()

	if v, ok := cached[name]; ok {
		return v, nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := ssm.NewFromConfig(cfg)

	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("get parameter: %w", err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return nil, fmt.Errorf("parameter %s has no value", name)
	}

	v := []byte(*out.Parameter.Value)
	cached[name] = v
	return v, nil
}
