package card

import (
	"fmt"
	"strconv"
)

// Suit 定义花色
type Suit int

// Value 定义点数（按 2..A 的固定顺序）
type Value int

const (
	Spade   Suit = iota // 黑桃
	Heart               // 红心
	Diamond             // 方块
	Club                // 梅花
)

// Suits 按建牌顺序排列的全部花色
var Suits = []Suit{Spade, Heart, Diamond, Club}

// suitSymbols 花色符号映射表
var suitSymbols = map[Suit]string{
	Spade:   "♠",
	Heart:   "♥",
	Diamond: "♦",
	Club:    "♣",
}

func (s Suit) String() string {
	if symbol, ok := suitSymbols[s]; ok {
		return symbol
	}
	return ""
}

// IsRed 红心和方块为红色
func (s Suit) IsRed() bool {
	return s == Heart || s == Diamond
}

// ParseSuit 从花色符号解析花色
func ParseSuit(symbol string) (Suit, error) {
	for s, sym := range suitSymbols {
		if sym == symbol {
			return s, nil
		}
	}
	return -1, fmt.Errorf("无法识别的花色: %q", symbol)
}

const (
	Two Value = iota + 2
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

// Values 固定点数顺序 2,3,...,10,J,Q,K,A
var Values = []Value{Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King, Ace}

// valueNames 牌面值字符串映射表
var valueNames = map[Value]string{
	Jack:  "J",
	Queen: "Q",
	King:  "K",
	Ace:   "A",
}

func (v Value) String() string {
	if name, ok := valueNames[v]; ok {
		return name
	}
	return strconv.Itoa(int(v))
}

// RankIndex 返回点数在 2..A 顺序中的下标
func (v Value) RankIndex() int {
	return int(v - Two)
}

// Valid 点数是否在 2..A 范围内
func (v Value) Valid() bool {
	return v >= Two && v <= Ace
}

// Points 计分：2-10 按面值，J=11 Q=12 K=13 A=1
func (v Value) Points() int {
	if v == Ace {
		return 1
	}
	return int(v)
}

// ParseValue 从牌面字符串解析点数
func ParseValue(name string) (Value, error) {
	for v, n := range valueNames {
		if n == name {
			return v, nil
		}
	}
	n, err := strconv.Atoi(name)
	if err != nil || n < int(Two) || n > int(Ten) {
		return -1, fmt.Errorf("无法识别的点数: %q", name)
	}
	return Value(n), nil
}

// Card 定义一张牌，花色+点数相同即为同一张牌
type Card struct {
	Suit  Suit
	Value Value
}

func (c Card) String() string {
	return c.Value.String() + c.Suit.String()
}

// Points 返回这张牌的分值
func (c Card) Points() int {
	return c.Value.Points()
}

// Parse 由花色符号和点数字符串构造一张牌
func Parse(suit, value string) (Card, error) {
	s, err := ParseSuit(suit)
	if err != nil {
		return Card{}, err
	}
	v, err := ParseValue(value)
	if err != nil {
		return Card{}, err
	}
	return Card{Suit: s, Value: v}, nil
}
