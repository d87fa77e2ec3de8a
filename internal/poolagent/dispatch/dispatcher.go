// Package dispatch 把 IQ stanza 路由到存储池服务，并构造响应 stanza
package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/jimyag/poolagent/internal/poolagent/entity"
	"github.com/jimyag/poolagent/pkg/apierror"
	"github.com/jimyag/poolagent/pkg/stanza"
	"github.com/jinzhu/copier"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/jimyag/poolagent/internal/poolagent/dispatch"

// PoolService 存储池操作
type PoolService interface {
	ListPools(ctx context.Context) ([]string, error)
	GetPoolInfo(ctx context.Context, identifier string) (*entity.PoolInfo, error)
	ListVolumes(ctx context.Context, identifier string) ([]string, error)
	CreatePool(ctx context.Context, identifier string) error
	DestroyPool(ctx context.Context, identifier string) error
	DescribePool(ctx context.Context, identifier string) (string, error)
	DefinePool(ctx context.Context, descriptor string, build bool) (*entity.DefinedPool, error)
	UndefinePool(ctx context.Context, identifier string, deleteContents bool) (*entity.UndefineResult, error)
	SetAutostart(ctx context.Context, identifier string, autostart bool) error
}

// Dispatcher 处理 archipel:storage 请求
type Dispatcher struct {
	pools   PoolService
	metrics *Metrics
	tracer  trace.Tracer
}

// New 创建 Dispatcher，metrics 可以为 nil
func New(pools PoolService, metrics *Metrics) *Dispatcher {
	return &Dispatcher{
		pools:   pools,
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
}

// HandleRaw 解析 IQ 并返回序列化后的响应
// 无法解析的输入也会得到一个错误响应
func (d *Dispatcher) HandleRaw(ctx context.Context, data []byte) ([]byte, error) {
	iq, err := stanza.Unmarshal(data)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("Received malformed iq stanza")
		reply := (&stanza.IQ{}).ErrorReply(apierror.WithCode(err, apierror.CodeGeneric))
		d.metrics.observe("unknown", outcomeError, string(apierror.KindInvalidRequest), 0)
		return stanza.Marshal(reply)
	}
	return stanza.Marshal(d.HandleIQ(ctx, iq))
}

// HandleIQ 处理一个请求 stanza，总是返回 result 或 error 类型的响应
func (d *Dispatcher) HandleIQ(ctx context.Context, iq *stanza.IQ) *stanza.IQ {
	start := time.Now()
	logger := zerolog.Ctx(ctx).With().Str("stanzaID", iq.ID).Str("from", iq.From).Logger()
	ctx = logger.WithContext(ctx)

	req, err := parseRequest(iq)
	actionName := "unknown"
	if req.Action != 0 {
		actionName = req.Action.String()
	}

	ctx, span := d.tracer.Start(ctx, "storage."+actionName,
		trace.WithAttributes(
			attribute.String("stanza.id", iq.ID),
			attribute.String("storage.action", actionName),
			attribute.String("storage.identifier", req.Identifier),
		))
	defer span.End()

	var reply *stanza.IQ
	if err == nil {
		reply, err = d.execute(ctx, iq, req)
	}
	if err != nil {
		code := apierror.CodeGeneric
		if req.Action != 0 {
			code = req.Action.ErrorCode()
		}
		apiErr := apierror.WithCode(err, code)

		logger.Error().
			Err(err).
			Str("action", actionName).
			Str("identifier", req.Identifier).
			Int("code", apiErr.Code).
			Msg("Storage pool request failed")
		span.RecordError(err)
		span.SetStatus(codes.Error, apiErr.Message)
		d.metrics.observe(actionName, outcomeError, string(apiErr.Kind), time.Since(start))
		return iq.ErrorReply(apiErr)
	}

	logger.Debug().
		Str("action", actionName).
		Str("identifier", req.Identifier).
		Dur("elapsed", time.Since(start)).
		Msg("Storage pool request handled")
	d.metrics.observe(actionName, outcomeSuccess, "", time.Since(start))
	return reply
}

// parseRequest 把 archipel 元素解析为 StoragePoolRequest
// 只要动作名称合法，返回的请求就带有 Action，用于选择错误码
func parseRequest(iq *stanza.IQ) (entity.StoragePoolRequest, error) {
	var req entity.StoragePoolRequest

	cmd, err := iq.Command()
	if err != nil {
		return req, err
	}

	action, err := entity.ParseAction(cmd.Action)
	if err != nil {
		return req, apierror.NewErrorWithRaw(0, apierror.KindInvalidRequest,
			fmt.Sprintf("unsupported action %q", cmd.Action), err)
	}
	req.Action = action
	req.Identifier = cmd.Identifier

	if action.NeedsIdentifier() && req.Identifier == "" {
		return req, apierror.NewError(0, apierror.KindInvalidRequest,
			fmt.Sprintf("action %s requires an identifier", action))
	}

	switch action {
	case entity.ActionPoolDefine:
		if req.Descriptor, err = cmd.Descriptor(); err != nil {
			return req, err
		}
		if req.Build, err = stanza.ParseFlag("build", cmd.Build, false); err != nil {
			return req, err
		}
	case entity.ActionPoolUndefine:
		if req.Delete, err = stanza.ParseFlag("delete", cmd.Delete, false); err != nil {
			return req, err
		}
	case entity.ActionPoolSetAutostart:
		if req.Autostart, err = stanza.ParseFlag("autostart", cmd.Autostart, true); err != nil {
			return req, err
		}
	}
	return req, nil
}

func (d *Dispatcher) execute(ctx context.Context, iq *stanza.IQ, req entity.StoragePoolRequest) (*stanza.IQ, error) {
	switch req.Action {
	case entity.ActionPoolList:
		names, err := d.pools.ListPools(ctx)
		if err != nil {
			return nil, err
		}
		items := make([]any, 0, len(names))
		for _, name := range names {
			items = append(items, stanza.PoolItem{Name: name})
		}
		return iq.Result(items...)

	case entity.ActionPoolInfo:
		info, err := d.pools.GetPoolInfo(ctx, req.Identifier)
		if err != nil {
			return nil, err
		}
		volumes, err := d.pools.ListVolumes(ctx, req.Identifier)
		if err != nil {
			return nil, err
		}
		out, err := toStanzaInfo(info)
		if err != nil {
			return nil, err
		}
		return iq.Result(out, stanza.NewVolumes(volumes))

	case entity.ActionPoolVolumes:
		volumes, err := d.pools.ListVolumes(ctx, req.Identifier)
		if err != nil {
			return nil, err
		}
		return iq.Result(stanza.NewVolumes(volumes))

	case entity.ActionPoolCreate:
		if err := d.pools.CreatePool(ctx, req.Identifier); err != nil {
			return nil, err
		}
		return iq.Result()

	case entity.ActionPoolDestroy:
		if err := d.pools.DestroyPool(ctx, req.Identifier); err != nil {
			return nil, err
		}
		return iq.Result()

	case entity.ActionPoolDescription:
		desc, err := d.pools.DescribePool(ctx, req.Identifier)
		if err != nil {
			return nil, err
		}
		return iq.Result(stanza.RawXML(desc))

	case entity.ActionPoolDefine:
		defined, err := d.pools.DefinePool(ctx, req.Descriptor, req.Build)
		if err != nil {
			return nil, err
		}
		return iq.Result(&stanza.DefinedPool{Name: defined.Name, UUID: defined.UUID})

	case entity.ActionPoolUndefine:
		result, err := d.pools.UndefinePool(ctx, req.Identifier, req.Delete)
		if err != nil {
			return nil, err
		}
		warnings := make([]any, 0, len(result.Warnings))
		for _, w := range result.Warnings {
			warnings = append(warnings, stanza.Warning{Text: w})
		}
		return iq.Result(warnings...)

	case entity.ActionPoolSetAutostart:
		if err := d.pools.SetAutostart(ctx, req.Identifier, req.Autostart); err != nil {
			return nil, err
		}
		return iq.Result()

	default:
		return nil, apierror.NewError(apierror.CodeGeneric, apierror.KindInvalidRequest,
			fmt.Sprintf("unsupported action %s", req.Action))
	}
}

// toStanzaInfo 转换为 info 元素
func toStanzaInfo(info *entity.PoolInfo) (*stanza.Info, error) {
	out := &stanza.Info{}
	if err := copier.Copy(out, info); err != nil {
		return nil, fmt.Errorf("convert pool info: %w", err)
	}
	out.State = uint8(info.State)
	out.StateName = info.State.String()
	return out, nil
}
