/*
 * Copyright (C) 2022 IBM, Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 *
 */

package utils

import (
	"os"
	"os/signal"
	"sync"
	"syscall"

	log "github.com/sirupsen/logrus"
)

var (
	exitChannels   []chan struct{}
	reloadChannels []chan struct{}
	chanMutex      sync.Mutex
)

// RegisterExitChannel adds a channel closed on SIGINT or SIGTERM.
func RegisterExitChannel(ch chan struct{}) {
	chanMutex.Lock()
	defer chanMutex.Unlock()
	exitChannels = append(exitChannels, ch)
}

// RegisterReloadChannel adds a channel notified on SIGHUP. Notifications
// are dropped while a previous one is still pending, so ch should be
// buffered.
func RegisterReloadChannel(ch chan struct{}) {
	chanMutex.Lock()
	defer chanMutex.Unlock()
	reloadChannels = append(reloadChannels, ch)
}

func SetupElegantExit() {
	log.Debugf("entering SetupElegantExit")
	chanMutex.Lock()
	exitChannels = make([]chan struct{}, 0)
	reloadChannels = make([]chan struct{}, 0)
	chanMutex.Unlock()
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		for sig := range sigChan {
			log.Debugf("received signal = %v", sig)
			chanMutex.Lock()
			if sig == syscall.SIGHUP {
				for _, ch := range reloadChannels {
					select {
					case ch <- struct{}{}:
					default:
					}
				}
				chanMutex.Unlock()
				continue
			}
			// exit signal received; stop other go functions
			for _, ch := range exitChannels {
				close(ch)
			}
			chanMutex.Unlock()
			signal.Stop(sigChan)
			log.Debugf("exiting SetupElegantExit go function")
			return
		}
	}()
	log.Debugf("exiting SetupElegantExit")
}
