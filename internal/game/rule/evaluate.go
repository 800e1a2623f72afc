package rule

import (
	"slices"

	"github.com/palemoky/kang357/internal/game/card"
)

// HandSize 一手牌的张数
const HandSize = 5

// Combination 定义特殊牌型
type Combination int

const (
	None        Combination = iota
	TreCinque8              // 358：全部为 3、5、8
	ScalaReale              // 同花顺且包含 10 和 A
	ScalaColore             // 同花顺
	Poker                   // 四条
	Colore                  // 同花
	Scala                   // 顺子
	Cinquanta               // 50：全部为 10、J、Q、K、A
	Tris                    // 三条（恰好三张同点）
)

// combinationNames 牌型在协议中的名称
var combinationNames = map[Combination]string{
	TreCinque8:  "358",
	ScalaReale:  "Scala Reale",
	ScalaColore: "Scala Colore",
	Poker:       "Poker",
	Colore:      "Colore",
	Scala:       "Scala",
	Cinquanta:   "50",
	Tris:        "Tris",
}

// multipliers 牌型倍数
var multipliers = map[Combination]int{
	TreCinque8:  16,
	ScalaReale:  15,
	ScalaColore: 10,
	Poker:       10,
	Colore:      5,
	Scala:       5,
	Cinquanta:   5,
	Tris:        3,
}

func (c Combination) String() string {
	return combinationNames[c]
}

// Multiplier 返回牌型倍数，None 为 0
func (c Combination) Multiplier() int {
	return multipliers[c]
}

// Precedence 返回牌型在优先级列表中的位置，越小越优先；None 排在最后
func (c Combination) Precedence() int {
	if c == None {
		return len(combinationNames) + 1
	}
	return int(c)
}

// Special 一手特殊牌的判定结果
type Special struct {
	Combination Combination
	Multiplier  int
}

// Name 返回牌型名称
func (s Special) Name() string {
	return s.Combination.String()
}

// Precedence 见 Combination.Precedence
func (s Special) Precedence() int {
	return s.Combination.Precedence()
}

// handAnalysis 对五张牌的预处理结果
type handAnalysis struct {
	sameSuit    bool
	consecutive bool
	maxOfAKind  int
	counts      map[card.Value]int
}

func analyze(hand []card.Card) handAnalysis {
	a := handAnalysis{
		sameSuit: true,
		counts:   make(map[card.Value]int, len(hand)),
	}

	indices := make([]int, 0, len(hand))
	for i, c := range hand {
		if i > 0 && c.Suit != hand[0].Suit {
			a.sameSuit = false
		}
		a.counts[c.Value]++
		a.maxOfAKind = max(a.maxOfAKind, a.counts[c.Value])
		indices = append(indices, c.Value.RankIndex())
	}

	slices.Sort(indices)
	a.consecutive = true
	for i := 1; i < len(indices); i++ {
		if indices[i] != indices[i-1]+1 {
			a.consecutive = false
			break
		}
	}
	return a
}

// allIn 所有牌的点数都在给定集合内
func allIn(hand []card.Card, allowed ...card.Value) bool {
	for _, c := range hand {
		if !slices.Contains(allowed, c.Value) {
			return false
		}
	}
	return true
}

// hasExactly 是否存在某个点数恰好出现 n 次
func (a handAnalysis) hasExactly(n int) bool {
	for _, count := range a.counts {
		if count == n {
			return true
		}
	}
	return false
}

// combinationCheckers 按优先级排列的牌型检查
var combinationCheckers = []struct {
	combination Combination
	match       func([]card.Card, handAnalysis) bool
}{
	{TreCinque8, func(h []card.Card, _ handAnalysis) bool {
		return allIn(h, card.Three, card.Five, card.Eight)
	}},
	{ScalaReale, func(h []card.Card, a handAnalysis) bool {
		return a.sameSuit && a.consecutive && a.counts[card.Ten] > 0 && a.counts[card.Ace] > 0
	}},
	{ScalaColore, func(_ []card.Card, a handAnalysis) bool { return a.sameSuit && a.consecutive }},
	{Poker, func(_ []card.Card, a handAnalysis) bool { return a.maxOfAKind == 4 }},
	{Colore, func(_ []card.Card, a handAnalysis) bool { return a.sameSuit }},
	{Scala, func(_ []card.Card, a handAnalysis) bool { return a.consecutive }},
	{Cinquanta, func(h []card.Card, _ handAnalysis) bool {
		return allIn(h, card.Ten, card.Jack, card.Queen, card.King, card.Ace)
	}},
	{Tris, func(_ []card.Card, a handAnalysis) bool { return a.hasExactly(3) }},
}

// Evaluate 判定五张牌的最佳特殊牌型，按优先级第一个命中的牌型胜出。
// 张数不是 5 时一律返回 false。结果与牌的顺序无关。
func Evaluate(hand []card.Card) (Special, bool) {
	if len(hand) != HandSize {
		return Special{}, false
	}

	a := analyze(hand)
	for _, checker := range combinationCheckers {
		if checker.match(hand, a) {
			return Special{
				Combination: checker.combination,
				Multiplier:  checker.combination.Multiplier(),
			}, true
		}
	}
	return Special{}, false
}

// Score 摊牌计分：手牌点数之和
func Score(hand []card.Card) int {
	return card.Points(hand)
}
