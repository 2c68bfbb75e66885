package myhttpclient

import (
	"context"
	"time"
)

const (
	ContentTypeForm = "application/x-www-form-urlencoded"
	ContentTypeJSON = "application/json"

	DefaultTimeout = 15 * time.Second
)

type HTTPSender interface {
	Send(c context.Context, method string, url string, contentType string, body []byte) (int, []byte, error)
}
