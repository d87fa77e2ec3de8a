package idgen

import (
	"fmt"
	"sync"
	"time"

	"github.com/sony/sonyflake"
)

// StanzaIDPrefix stanza id 的前缀
const StanzaIDPrefix = "pool"

// Generator 递增 ID 生成器
// 使用 Sonyflake 算法生成全局唯一且递增的 ID
type Generator struct {
	sf *sonyflake.Sonyflake
}

var (
	defaultGenerator     *Generator
	defaultGeneratorOnce sync.Once
)

// DefaultGenerator 返回默认的 ID 生成器
func DefaultGenerator() *Generator {
	defaultGeneratorOnce.Do(func() {
		defaultGenerator = New()
	})
	return defaultGenerator
}

// New 创建新的 ID 生成器
func New() *Generator {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{
		StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	if sf == nil {
		// 没有可用的私有 IP 作为机器 ID 时，退回固定机器 ID
		sf = sonyflake.NewSonyflake(sonyflake.Settings{
			StartTime: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			MachineID: func() (uint16, error) { return 1, nil },
		})
	}

	return &Generator{
		sf: sf,
	}
}

// GenerateStanzaID 生成 IQ stanza id（格式：pool-{递增 ID}）
func (g *Generator) GenerateStanzaID() (string, error) {
	id, err := g.sf.NextID()
	if err != nil {
		return "", fmt.Errorf("generate stanza ID: %w", err)
	}
	return fmt.Sprintf("%s-%d", StanzaIDPrefix, id), nil
}

// GenerateID 生成通用递增 ID
func (g *Generator) GenerateID() (uint64, error) {
	return g.sf.NextID()
}

// GenerateStanzaID 使用默认生成器生成 stanza id
func GenerateStanzaID() (string, error) {
	return DefaultGenerator().GenerateStanzaID()
}

// GenerateID 使用默认生成器生成通用递增 ID
func GenerateID() (uint64, error) {
	return DefaultGenerator().GenerateID()
}
