package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"os"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"

	"github.com/thinkbeforeclick/platform/internal/account"
	"github.com/thinkbeforeclick/platform/internal/api"
	"github.com/thinkbeforeclick/platform/internal/config"
	"github.com/thinkbeforeclick/platform/internal/identity"
	"github.com/thinkbeforeclick/platform/internal/mail"
	"github.com/thinkbeforeclick/platform/internal/pkg/logger"
	"github.com/thinkbeforeclick/platform/internal/report"
	"github.com/thinkbeforeclick/platform/internal/reports"
	"github.com/thinkbeforeclick/platform/internal/simulation"
	"github.com/thinkbeforeclick/platform/internal/store"
)

// The Lambda entrypoint runs the same router as cmd/server behind API
// Gateway's proxy integration, sharing one SDK config across all clients.
func main() {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		logger.Error("loading configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		logger.Error("loading AWS config", "error", err)
		os.Exit(1)
	}

	st := store.NewWithClient(dynamodb.NewFromConfig(awsCfg), cfg.Store)
	idp := identity.NewCognitoProviderWithClient(
		cognitoidentityprovider.NewFromConfig(awsCfg), cfg.Identity)
	mailer := mail.NewSESSenderWithClient(sesv2.NewFromConfig(awsCfg), cfg.Mail)
	artifacts := reports.NewS3StoreWithClient(s3.NewFromConfig(awsCfg), cfg.Reports)

	accounts := account.NewService(st, idp)
	sim := simulation.NewService(st, mailer, cfg.Tracking)
	rep := report.NewService(st)

	router := api.SetupRoutes(api.NewHandlers(accounts, sim, rep, artifacts))

	lambda.Start(func(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
		return serve(ctx, router, event)
	})
}

// serve translates one proxy event through the chi router.
func serve(ctx context.Context, router http.Handler, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	body := event.Body
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return events.APIGatewayProxyResponse{
				StatusCode: http.StatusBadRequest,
				Body:       `{"error":"invalid request encoding"}`,
			}, nil
		}
		body = string(decoded)
	}

	u := url.URL{Path: event.Path}
	if len(event.QueryStringParameters) > 0 {
		q := url.Values{}
		for k, v := range event.QueryStringParameters {
			q.Set(k, v)
		}
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, event.HTTPMethod, u.String(), bytes.NewReader([]byte(body)))
	if err != nil {
		return events.APIGatewayProxyResponse{StatusCode: http.StatusInternalServerError}, nil
	}
	for k, v := range event.Headers {
		req.Header.Set(k, v)
	}

	rec := &responseRecorder{header: make(http.Header), status: http.StatusOK}
	router.ServeHTTP(rec, req)

	headers := make(map[string]string, len(rec.header))
	for k, vs := range rec.header {
		headers[k] = strings.Join(vs, ",")
	}

	return events.APIGatewayProxyResponse{
		StatusCode: rec.status,
		Headers:    headers,
		Body:       rec.body.String(),
	}, nil
}

type responseRecorder struct {
	header http.Header
	body   bytes.Buffer
	status int
}

func (r *responseRecorder) Header() http.Header { return r.header }

func (r *responseRecorder) Write(b []byte) (int, error) { return r.body.Write(b) }

func (r *responseRecorder) WriteHeader(status int) { r.status = status }
