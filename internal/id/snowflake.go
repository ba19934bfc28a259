// Package id generates identifiers for chat messages and rooms.
package id

import (
	"fmt"
	"strings"
	"sync"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
)

const roomIDLen = 8

// Generator hands out time-ordered message ids from one snowflake node.
type Generator struct {
	node *snowflake.Node
}

func NewGenerator(nodeID int64) (*Generator, error) {
	node, err := snowflake.NewNode(nodeID)
	if err != nil {
		return nil, fmt.Errorf("snowflake node %d: %w", nodeID, err)
	}
	return &Generator{node: node}, nil
}

func (g *Generator) Next() string {
	return g.node.Generate().String()
}

var (
	fallback     *Generator
	fallbackOnce sync.Once
)

// Default is a node-0 generator for tests and single-process setups.
func Default() *Generator {
	fallbackOnce.Do(func() {
		fallback, _ = NewGenerator(0)
	})
	return fallback
}

// RoomID returns a short shareable room code cut from a UUIDv4.
func RoomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:roomIDLen]
}
