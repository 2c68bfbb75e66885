package mypubsub

import (
	"context"
	"os"
)

//go:generate mockgen -source=pubsub_api.go -package mypubsub -destination pubsub_mock.go PubSub
type PubSub interface {
	CreateTopic(c context.Context, topic string) error
	Publish(c context.Context, topic string, data string) error
}

// New connects to Google Cloud pubsub when running on Google Cloud. Locally messages are only
// logged.
func New(c context.Context) (PubSub, func(), error) {
	if os.Getenv("GOOGLE_CLOUD_PROJECT") != "" {
		return newGcloudPubSub(c)
	}
	return newFakePubSub(c)
}
