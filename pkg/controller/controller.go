/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package controller

import (
	"fmt"

	"github.com/hyperledger/aries-framework-go/spi/storage"

	"github.com/Cainuriel/are-you-kid/pkg/controller/command"
	"github.com/Cainuriel/are-you-kid/pkg/controller/command/credengine"
)

type provider interface {
	StorageProvider() storage.Provider
}

// GetCommandHandlers returns all command handlers provided by controller.
func GetCommandHandlers(p provider) ([]command.Handler, error) {
	credengineCmd, err := credengine.New(p)
	if err != nil {
		return nil, fmt.Errorf("create credengine command : %w", err)
	}

	var allHandlers []command.Handler
	allHandlers = append(allHandlers, credengineCmd.GetHandlers()...)

	return allHandlers, nil
}
