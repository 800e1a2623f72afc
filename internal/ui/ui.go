// Package ui wires the terminal client together.
package ui

import (
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/transport"
	"github.com/palemoky/kang357/internal/ui/handler"
	"github.com/palemoky/kang357/internal/ui/input"
	"github.com/palemoky/kang357/internal/ui/model"
	"github.com/palemoky/kang357/internal/ui/view"
)

// NewOnlineModel creates an online model connected to serverURL.
func NewOnlineModel(serverURL, codecName string) (*model.OnlineModel, error) {
	c, err := codec.New(codecName)
	if err != nil {
		return nil, err
	}
	return Wire(model.NewOnlineModel(transport.NewClient(serverURL, c))), nil
}

// Wire injects the view renderer, key handler and server message handler.
func Wire(m *model.OnlineModel) *model.OnlineModel {
	m.SetViewRenderer(view.CreateViewRenderer())
	m.SetKeyHandler(input.HandleKeyPress)
	m.SetServerMessageHandler(handler.HandleServerMessage)
	return m
}
