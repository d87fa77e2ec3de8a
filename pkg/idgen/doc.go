// Package idgen 提供递增 ID 生成器
//
// 使用 Sonyflake 算法生成全局唯一且时间有序的 64 位 ID，
// 用作 IQ stanza 的 id 属性，便于按 id 关联请求和响应日志。
//
//	id, err := idgen.GenerateStanzaID()
//	// id: "pool-1234567890"
//
// 需要独立序列时创建自定义生成器：
//
//	gen := idgen.New()
//	id, err := gen.GenerateStanzaID()
package idgen
