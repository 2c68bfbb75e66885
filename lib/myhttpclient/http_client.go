package myhttpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/MarcGrol/fpsgateway/lib/mylog"
)

type httpClient struct {
	logger mylog.Logger
	client *http.Client
}

func New(timeout time.Duration) HTTPSender {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &httpClient{
		logger: mylog.New("httpclient"),
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

func (hc httpClient) Send(c context.Context, method string, url string, contentType string, body []byte) (int, []byte, error) {
	httpReq, err := http.NewRequestWithContext(c, method, url, bytes.NewReader(body))
	if err != nil {
		return 0, nil, fmt.Errorf("error creating http request for %s %s: %s", method, url, err)
	}

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	hc.logger.Log(c, "", mylog.SeverityDebug, "HTTP request: %s %s", method, url)

	httpResp, err := hc.client.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("error sending %s %s: %w", method, url, err)
	}
	defer httpResp.Body.Close()

	respPayload, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("error reading response %s %s: %w", method, url, err)
	}

	hc.logger.Log(c, "", mylog.SeverityDebug, "HTTP response: %s %s -> %d (%s)", method, url, httpResp.StatusCode, time.Since(start))

	return httpResp.StatusCode, respPayload, nil
}
