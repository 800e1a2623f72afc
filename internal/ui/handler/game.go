package handler

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	gameClient "github.com/palemoky/kang357/internal/client"
	"github.com/palemoky/kang357/internal/game/card"
	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/protocol/convert"
	"github.com/palemoky/kang357/internal/ui/model"
)

func handleMsgHandDealt(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.HandDealtPayload](msg)
	if err != nil {
		return nil
	}
	hand, err := convert.InfosToCards(payload.Hand)
	if err != nil {
		return Notify(m, model.NotifyError, "⚠️ 无法识别的手牌")
	}

	m.Game().State().StartHand(hand, payload.Special, payload.AllPlayerIDs)
	m.Game().ClearSelection()
	m.Input().Blur()
	m.SetPhase(model.PhasePlaying)

	if payload.Special != nil {
		m.Game().AddChatMessage(fmt.Sprintf("系统: 你拿到了 %s (x%d)！", payload.Special.Combination, payload.Special.Multiplier))
	}
	return nil
}

func handleMsgYourTurn(m model.Model, _ *protocol.Message) tea.Cmd {
	state := m.Game().State()
	state.CurrentTurn = m.PlayerID()
	state.TurnPhase = gameClient.PhaseDraw
	state.ReactionCard = nil
	return nil
}

func handleMsgTurnChanged(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.TurnChangedPayload](msg)
	if err != nil {
		return nil
	}
	state := m.Game().State()
	state.CurrentTurn = payload.PlayerID
	state.TurnPhase = payload.Phase
	if payload.PlayerID != m.PlayerID() {
		state.ReactionCard = nil
	}
	return nil
}

func handleMsgCardDrawn(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.CardDrawnPayload](msg)
	if err != nil {
		return nil
	}
	c, err := convert.InfoToCard(payload.Card)
	if err != nil {
		return nil
	}
	m.Game().State().AddCard(c, m.PlayerID())
	return nil
}

func handleMsgPlayerDrew(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.PlayerDrewPayload](msg)
	if err != nil {
		return nil
	}
	state := m.Game().State()
	state.HandCounts[payload.PlayerID] = payload.HandCount
	state.TurnPhase = gameClient.PhaseDiscard
	return nil
}

func handleMsgCardsDiscarded(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.CardsDiscardedPayload](msg)
	if err != nil {
		return nil
	}
	cards, err := convert.InfosToCards(payload.Cards)
	if err != nil {
		return nil
	}
	m.Game().State().ApplyDiscard(payload.PlayerID, cards, m.PlayerID())
	if payload.PlayerID == m.PlayerID() {
		m.Game().ClearSelection()
	}
	return nil
}

func handleMsgReactionAvailable(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.ReactionAvailablePayload](msg)
	if err != nil {
		return nil
	}
	c, err := convert.InfoToCard(payload.Card)
	if err != nil {
		return nil
	}
	m.Game().State().ReactionCard = &c
	return nil
}

func handleMsgGameEnded(m model.Model, msg *protocol.Message) tea.Cmd {
	payload, err := codec.ParsePayload[protocol.GameEndedPayload](msg)
	if err != nil {
		return nil
	}

	hands := make(map[string][]card.Card, len(payload.Hands))
	for id, infos := range payload.Hands {
		if cards, err := convert.InfosToCards(infos); err == nil {
			hands[id] = cards
		}
	}

	state := m.Game().State()
	state.Result = &gameClient.Result{
		WinnerID:    payload.WinnerID,
		Reason:      payload.Reason,
		Combination: payload.Combination,
		Multiplier:  payload.Multiplier,
		Scores:      payload.Scores,
		Hands:       hands,
	}
	state.CurrentTurn = ""
	state.ReactionCard = nil

	m.Game().ClearSelection()
	m.Game().SetShowingHelp(false)
	m.SetPhase(model.PhaseGameOver)
	return nil
}
