// Package event implements Pub-Sub using channel.
package event

import (
	"errors"
	"sync"
)

var (
	ErrEventNotFound = errors.New("event not found")
)

// subscriberBuffer keeps a slow subscriber from stalling a lifecycle flow.
const subscriberBuffer = 16

type EventEmitter struct {
	events  map[string][]chan interface{}
	rwMutex *sync.RWMutex
	closed  bool
}

func New() *EventEmitter {
	return &EventEmitter{
		events:  make(map[string][]chan interface{}),
		rwMutex: &sync.RWMutex{},
	}
}

// Subscribe returns a buffered channel receiving every message published on
// the topic.
func (ee *EventEmitter) Subscribe(topic string) <-chan interface{} {
	ee.rwMutex.Lock()
	out := make(chan interface{}, subscriberBuffer)
	ee.events[topic] = append(ee.events[topic], out)
	ee.rwMutex.Unlock()
	return out
}

// Publish delivers message to all subscribers of the topic. Messages to a
// subscriber with a full buffer are dropped rather than blocking the
// publisher.
func (ee *EventEmitter) Publish(topic string, message interface{}) {
	ee.rwMutex.RLock()
	defer ee.rwMutex.RUnlock()
	if ee.closed {
		return
	}
	for _, out := range ee.events[topic] {
		select {
		case out <- message:
		default:
		}
	}
}

// Unsubscribe removes and closes one subscriber channel.
func (ee *EventEmitter) Unsubscribe(topic string, deleting <-chan interface{}) error {
	ee.rwMutex.Lock()
	defer ee.rwMutex.Unlock()
	outs, exist := ee.events[topic]
	if !exist {
		return ErrEventNotFound
	}
	newOuts := []chan interface{}{}
	for _, out := range outs {
		if out == deleting {
			close(out)
		} else {
			newOuts = append(newOuts, out)
		}
	}
	ee.events[topic] = newOuts
	return nil
}

// Close closes every subscriber channel.
func (ee *EventEmitter) Close() error {
	ee.rwMutex.Lock()
	defer ee.rwMutex.Unlock()
	ee.closed = true
	for topic, outs := range ee.events {
		for _, out := range outs {
			close(out)
		}
		delete(ee.events, topic)
	}
	return nil
}
