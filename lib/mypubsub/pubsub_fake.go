package mypubsub

import (
	"context"
	"log"
)

type fakePubSub struct{}

func newFakePubSub(c context.Context) (PubSub, func(), error) {
	return &fakePubSub{}, func() {}, nil
}

func (ps *fakePubSub) CreateTopic(c context.Context, topic string) error {
	return nil
}

func (ps *fakePubSub) Publish(c context.Context, topic string, data string) error {
	log.Printf("Publish on topic %s: %s", topic, data)
	return nil
}
