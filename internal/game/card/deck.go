package card

import (
	crand "crypto/rand"
	"errors"
	"math/rand/v2"
)

// DeckSize 一副牌（不含王）的张数
const DeckSize = 52

// ErrEmptyDeck 牌堆已空
var ErrEmptyDeck = errors.New("牌堆已空")

// Deck 定义一副牌，只会因摸牌而减少
type Deck []Card

// NewDeck 按花色、点数顺序构建 52 张牌
func NewDeck() Deck {
	deck := make(Deck, 0, DeckSize)
	for _, s := range Suits {
		for _, v := range Values {
			deck = append(deck, Card{Suit: s, Value: v})
		}
	}
	return deck
}

// NewRand 返回以系统熵初始化的 ChaCha8 随机源
func NewRand() *rand.Rand {
	var seed [32]byte
	_, _ = crand.Read(seed[:])
	return rand.New(rand.NewChaCha8(seed))
}

// NewShuffledDeck 构建并洗好一副牌；r 为 nil 时使用 NewRand
func NewShuffledDeck(r *rand.Rand) Deck {
	if r == nil {
		r = NewRand()
	}
	deck := NewDeck()
	deck.Shuffle(r)
	return deck
}

// Shuffle Fisher–Yates 洗牌：i 从末尾到 1，与 [0, i] 中的均匀随机位置交换
func (d Deck) Shuffle(r *rand.Rand) {
	for i := len(d) - 1; i > 0; i-- {
		j := r.IntN(i + 1)
		d[i], d[j] = d[j], d[i]
	}
}

// Draw 从牌堆末端摸一张牌
func (d *Deck) Draw() (Card, error) {
	n := len(*d)
	if n == 0 {
		return Card{}, ErrEmptyDeck
	}
	c := (*d)[n-1]
	*d = (*d)[:n-1]
	return c, nil
}

// Deal 从牌堆前端取出 n 张牌
func (d *Deck) Deal(n int) ([]Card, error) {
	if n > len(*d) {
		return nil, ErrEmptyDeck
	}
	hand := make([]Card, n)
	copy(hand, (*d)[:n])
	*d = (*d)[n:]
	return hand, nil
}

// Len 剩余张数
func (d Deck) Len() int {
	return len(d)
}
