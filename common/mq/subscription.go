package mq

import (
	"sync"
)

type SubscriptionCallback func(msg BrokerMessage)

type SubscriptionMap struct {
	data map[string]SubscriptionCallback
	lock *sync.RWMutex
}

func NewSubscriptionMap() *SubscriptionMap {
	return &SubscriptionMap{
		data: make(map[string]SubscriptionCallback),
		lock: &sync.RWMutex{},
	}
}

func (smap *SubscriptionMap) Get(lane string) SubscriptionCallback {
	smap.lock.RLock()
	res, present := smap.data[lane]
	smap.lock.RUnlock()

	if !present {
		return nil
	}

	return res
}

func (smap *SubscriptionMap) Set(lane string, cbk SubscriptionCallback) {
	smap.lock.Lock()
	smap.data[lane] = cbk
	smap.lock.Unlock()
}

func (smap *SubscriptionMap) GetKeys() []string {
	smap.lock.RLock()
	keys := make([]string, 0, len(smap.data))
	for key := range smap.data {
		keys = append(keys, key)
	}
	smap.lock.RUnlock()

	return keys
}
