package room

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/palemoky/kang357/internal/game/session"
	"github.com/palemoky/kang357/internal/server/storage"
)

const storeTimeout = 3 * time.Second

// toRoomData 生成房间快照，调用方必须持有 r.mu
func (r *Room) toRoomData() *storage.RoomData {
	s := r.session
	players := s.Players()

	data := &storage.RoomData{
		Code:      r.Code,
		Phase:     s.Phase().String(),
		HostID:    s.HostID(),
		Players:   make([]storage.PlayerData, 0, len(players)),
		Capacity:  s.Capacity(),
		DeckCount: s.DeckCount(),
		TurnOf:    s.TurnHolder(),
		WinnerID:  s.WinnerID(),
		CreatedAt: r.CreatedAt.Unix(),
		UpdatedAt: time.Now().Unix(),
	}
	for _, p := range players {
		data.Players = append(data.Players, storage.PlayerData{
			ID:        p.ID,
			Name:      p.Name,
			HandCount: len(s.Hand(p.ID)),
		})
	}
	return data
}

// persist 异步保存快照，调用方必须持有 r.mu
func (r *Room) persist() {
	if r.snapshots == nil {
		return
	}
	r.snapshots.save(r.toRoomData())
}

// snapshotWriter 按顺序写入单个房间的快照。
// 未写出的快照只保留最新一份；删除之后不再接受写入，写完删除后协程退出。
type snapshotWriter struct {
	store Store
	code  string

	mu      sync.Mutex
	pending *storage.RoomData
	deleted bool
	wake    chan struct{}
}

func newSnapshotWriter(store Store, code string) *snapshotWriter {
	w := &snapshotWriter{
		store: store,
		code:  code,
		wake:  make(chan struct{}, 1),
	}
	go w.run()
	return w
}

func (w *snapshotWriter) save(data *storage.RoomData) {
	w.mu.Lock()
	if w.deleted {
		w.mu.Unlock()
		return
	}
	w.pending = data
	w.mu.Unlock()
	w.signal()
}

func (w *snapshotWriter) delete() {
	w.mu.Lock()
	if w.deleted {
		w.mu.Unlock()
		return
	}
	w.deleted = true
	w.pending = nil
	w.mu.Unlock()
	w.signal()
}

func (w *snapshotWriter) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *snapshotWriter) run() {
	for range w.wake {
		w.mu.Lock()
		data, deleted := w.pending, w.deleted
		w.pending = nil
		w.mu.Unlock()

		if data != nil {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			if err := w.store.SaveRoom(ctx, data); err != nil {
				log.Printf("⚠️ 保存房间 %s 失败: %v", w.code, err)
			}
			cancel()
		}
		if deleted {
			ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
			if err := w.store.DeleteRoom(ctx, w.code); err != nil {
				log.Printf("⚠️ 删除房间 %s 失败: %v", w.code, err)
			}
			cancel()
			return
		}
	}
}

// recordResults 异步记录对局结果，弃局不计入排行榜
func (r *Room) recordResults(e session.GameEnded) {
	recorder := r.manager.recorder
	if recorder == nil || e.Reason == session.EndAbandon {
		return
	}

	multiplier := 1
	if e.Special != nil {
		multiplier = e.Special.Multiplier
	}
	players := r.session.Players()
	results := make([]storage.GameResult, len(players))
	for i, p := range players {
		results[i] = storage.GameResult{
			PlayerID:   p.ID,
			PlayerName: p.Name,
			Won:        p.ID == e.WinnerID,
			Reason:     string(e.Reason),
			Multiplier: multiplier,
		}
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		for _, result := range results {
			if err := recorder.RecordGameResult(ctx, result); err != nil {
				log.Printf("⚠️ 记录 %s 的对局结果失败: %v", result.PlayerName, err)
			}
		}
	}()
}
