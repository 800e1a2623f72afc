package room

import (
	"log"

	"github.com/palemoky/kang357/internal/apperrors"
	"github.com/palemoky/kang357/internal/game/card"
	"github.com/palemoky/kang357/internal/game/session"
	"github.com/palemoky/kang357/internal/protocol"
	"github.com/palemoky/kang357/internal/protocol/codec"
	"github.com/palemoky/kang357/internal/protocol/convert"
	"github.com/palemoky/kang357/internal/types"
)

// apply 在房间锁内执行一次会话操作并投递结果
func (r *Room) apply(op func(s *session.Session) ([]session.Event, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return apperrors.ErrRoomNotFound
	}
	events, err := op(r.session)
	if err != nil {
		return err
	}
	r.deliver(events)
	r.persist()
	return nil
}

// Start 房主开局
func (r *Room) Start(client types.ClientInterface) error {
	return r.apply(func(s *session.Session) ([]session.Event, error) {
		return s.Start(client.GetID())
	})
}

// Draw 摸牌
func (r *Room) Draw(client types.ClientInterface) error {
	return r.apply(func(s *session.Session) ([]session.Event, error) {
		return s.Draw(client.GetID())
	})
}

// Discard 出牌
func (r *Room) Discard(client types.ClientInterface, cards []card.Card) error {
	return r.apply(func(s *session.Session) ([]session.Event, error) {
		return s.Discard(client.GetID(), cards)
	})
}

// Showdown 摊牌
func (r *Room) Showdown(client types.ClientInterface) error {
	return r.apply(func(s *session.Session) ([]session.Event, error) {
		return s.Showdown(client.GetID())
	})
}

// deliver 把领域事件映射为协议消息：手牌相关只发给本人，其余广播
func (r *Room) deliver(events []session.Event) {
	for _, event := range events {
		switch e := event.(type) {
		case session.PlayerJoined:
			r.broadcastExcept(e.Player.ID, codec.MustNewMessage(protocol.MsgPlayerJoined, protocol.PlayerJoinedPayload{
				Player:  r.playerInfo(e.Player),
				Players: r.playerInfos(),
			}))

		case session.PlayerLeft:
			r.broadcast(codec.MustNewMessage(protocol.MsgPlayerLeft, protocol.PlayerLeftPayload{
				PlayerID: e.PlayerID,
				Players:  r.playerInfos(),
			}))

		case session.HandDealt:
			payload := protocol.HandDealtPayload{
				Hand:         convert.CardsToInfos(e.Hand),
				PlayerIndex:  e.PlayerIndex,
				TotalPlayers: e.TotalPlayers,
				AllPlayerIDs: e.AllPlayerIDs,
			}
			if e.Special != nil {
				payload.Special = &protocol.SpecialInfo{
					Combination: e.Special.Name(),
					Multiplier:  e.Special.Multiplier,
				}
			}
			r.sendTo(e.PlayerID, codec.MustNewMessage(protocol.MsgHandDealt, payload))

		case session.YourTurn:
			r.sendTo(e.PlayerID, codec.MustNewMessage(protocol.MsgYourTurn, nil))

		case session.TurnChanged:
			// 跟牌阶段会暴露下家持有同点牌，其他人一律看到摸牌阶段
			r.broadcastExcept(e.PlayerID, codec.MustNewMessage(protocol.MsgTurnChanged, protocol.TurnChangedPayload{
				PlayerID: e.PlayerID,
				Phase:    session.PhaseDraw.String(),
			}))
			r.sendTo(e.PlayerID, codec.MustNewMessage(protocol.MsgTurnChanged, protocol.TurnChangedPayload{
				PlayerID: e.PlayerID,
				Phase:    e.Phase.String(),
			}))

		case session.CardDrawn:
			r.sendTo(e.PlayerID, codec.MustNewMessage(protocol.MsgCardDrawn, protocol.CardDrawnPayload{
				Card: convert.CardToInfo(e.Card),
			}))

		case session.PlayerDrew:
			r.broadcast(codec.MustNewMessage(protocol.MsgPlayerDrew, protocol.PlayerDrewPayload{
				PlayerID:  e.PlayerID,
				HandCount: e.HandCount,
			}))

		case session.CardsDiscarded:
			r.broadcast(codec.MustNewMessage(protocol.MsgCardsDiscarded, protocol.CardsDiscardedPayload{
				PlayerID: e.PlayerID,
				Cards:    convert.CardsToInfos(e.Cards),
			}))

		case session.ReactionAvailable:
			r.sendTo(e.PlayerID, codec.MustNewMessage(protocol.MsgReactionAvailable, protocol.ReactionAvailablePayload{
				Card: convert.CardToInfo(e.Card),
			}))

		case session.GameEnded:
			payload := protocol.GameEndedPayload{
				WinnerID: e.WinnerID,
				Reason:   string(e.Reason),
				Scores:   e.Scores,
				Hands:    convert.HandsToInfos(e.Hands),
			}
			if e.Special != nil {
				payload.Combination = e.Special.Name()
				payload.Multiplier = e.Special.Multiplier
			}
			r.broadcast(codec.MustNewMessage(protocol.MsgGameEnded, payload))
			log.Printf("🏁 房间 %s 游戏结束，%s 获胜 (%s)", r.Code, e.WinnerName, e.Reason)
			r.recordResults(e)

		default:
			log.Printf("⚠️ 房间 %s 未处理的事件类型 %T", r.Code, event)
		}
	}
}

func (r *Room) playerInfo(p session.Player) protocol.PlayerInfo {
	return protocol.PlayerInfo{ID: p.ID, Name: p.Name, Host: p.ID == r.session.HostID()}
}
