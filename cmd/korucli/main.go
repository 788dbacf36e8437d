// Copyright (c) 2019 devblok
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package main

import (
	"encoding/json"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/devblok/korugui/vkr"
)

func main() {
	cfg := vkr.InstanceConfiguration{
		DebugMode:  false,
		Extensions: []string{},
		Layers:     []string{},
	}

	instance, err := vkr.NewInstance(vkr.DefaultApplicationInfo, nil, cfg)
	if err != nil {
		log.WithError(err).Fatal("Instance not created")
	}
	defer instance.Destroy()

	bytes, err := json.MarshalIndent(instance.PhysicalDevicesInfo(), "", "  ")
	if err != nil {
		log.WithError(err).Fatal("Device info not encoded")
	}
	fmt.Printf("%s\n", bytes)
}
