package dispatch

import (
	"context"
	"fmt"
	"testing"

	"github.com/jimyag/poolagent/internal/poolagent/entity"
	"github.com/jimyag/poolagent/pkg/apierror"
	"github.com/jimyag/poolagent/pkg/stanza"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockPoolService struct {
	mock.Mock
}

func (m *mockPoolService) ListPools(ctx context.Context) ([]string, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockPoolService) GetPoolInfo(ctx context.Context, identifier string) (*entity.PoolInfo, error) {
	args := m.Called(identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.PoolInfo), args.Error(1)
}

func (m *mockPoolService) ListVolumes(ctx context.Context, identifier string) ([]string, error) {
	args := m.Called(identifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockPoolService) CreatePool(ctx context.Context, identifier string) error {
	return m.Called(identifier).Error(0)
}

func (m *mockPoolService) DestroyPool(ctx context.Context, identifier string) error {
	return m.Called(identifier).Error(0)
}

func (m *mockPoolService) DescribePool(ctx context.Context, identifier string) (string, error) {
	args := m.Called(identifier)
	return args.String(0), args.Error(1)
}

func (m *mockPoolService) DefinePool(ctx context.Context, descriptor string, build bool) (*entity.DefinedPool, error) {
	args := m.Called(descriptor, build)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.DefinedPool), args.Error(1)
}

func (m *mockPoolService) UndefinePool(ctx context.Context, identifier string, deleteContents bool) (*entity.UndefineResult, error) {
	args := m.Called(identifier, deleteContents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.UndefineResult), args.Error(1)
}

func (m *mockPoolService) SetAutostart(ctx context.Context, identifier string, autostart bool) error {
	return m.Called(identifier, autostart).Error(0)
}

var _ PoolService = (*mockPoolService)(nil)

func request(iqType, archipel string) []byte {
	return []byte(fmt.Sprintf(
		`<iq type="%s" id="abc-1" from="admin@example.com/ctl" to="hypervisor@example.com/agent">`+
			`<query xmlns="archipel:storage">%s</query></iq>`, iqType, archipel))
}

func handle(t *testing.T, d *Dispatcher, data []byte) *stanza.IQ {
	t.Helper()

	out, err := d.HandleRaw(context.Background(), data)
	require.NoError(t, err)
	reply, err := stanza.Unmarshal(out)
	require.NoError(t, err)
	return reply
}

func TestDispatcher_Results(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name      string
		request   []byte
		mockSetup func(*mockPoolService)
		check     func(*testing.T, *stanza.IQ)
	}{
		{
			name:    "poollist",
			request: request("get", `<archipel action="poollist"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("ListPools").Return([]string{"default", "images"}, nil)
			},
			check: func(t *testing.T, reply *stanza.IQ) {
				var payload struct {
					Pools []stanza.PoolItem `xml:"pool"`
				}
				require.NoError(t, reply.DecodePayload(&payload))
				require.Len(t, payload.Pools, 2)
				assert.Equal(t, "default", payload.Pools[0].Name)
				assert.Equal(t, "images", payload.Pools[1].Name)
			},
		},
		{
			name:    "poolinfo",
			request: request("get", `<archipel action="poolinfo" identifier="default"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("GetPoolInfo", "default").Return(&entity.PoolInfo{
					State:       entity.PoolStateRunning,
					Capacity:    1000,
					Allocation:  400,
					Available:   600,
					Persistent:  true,
					Autostart:   true,
					VolumeCount: 2,
				}, nil)
				m.On("ListVolumes", "default").Return([]string{"a.qcow2", "b.qcow2"}, nil)
			},
			check: func(t *testing.T, reply *stanza.IQ) {
				var payload struct {
					Info    stanza.Info    `xml:"info"`
					Volumes stanza.Volumes `xml:"volumes"`
				}
				require.NoError(t, reply.DecodePayload(&payload))
				assert.Equal(t, uint8(entity.PoolStateRunning), payload.Info.State)
				assert.Equal(t, "running", payload.Info.StateName)
				assert.Equal(t, uint64(1000), payload.Info.Capacity)
				assert.Equal(t, uint64(400), payload.Info.Allocation)
				assert.Equal(t, uint64(600), payload.Info.Available)
				assert.True(t, payload.Info.Persistent)
				assert.True(t, payload.Info.Autostart)
				assert.Equal(t, uint32(2), payload.Info.VolumeCount)
				assert.Equal(t, []string{"a.qcow2", "b.qcow2"}, payload.Volumes.Names())
			},
		},
		{
			name:    "pooldescription",
			request: request("get", `<archipel action="pooldescription" identifier="default"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("DescribePool", "default").Return(`<pool type="dir"><name>default</name></pool>`, nil)
			},
			check: func(t *testing.T, reply *stanza.IQ) {
				var payload struct {
					Pool struct {
						Type string `xml:"type,attr"`
						Name string `xml:"name"`
					} `xml:"pool"`
				}
				require.NoError(t, reply.DecodePayload(&payload))
				assert.Equal(t, "dir", payload.Pool.Type)
				assert.Equal(t, "default", payload.Pool.Name)
			},
		},
		{
			name: "pooldefine",
			request: request("set", `<archipel action="pooldefine" build="True">`+
				`<pool xmlns="http://www.gajim.org/xmlns/undeclared" type="dir"><name>scratch</name></pool>`+
				`</archipel>`),
			mockSetup: func(m *mockPoolService) {
				m.On("DefinePool", `<pool type="dir"><name>scratch</name></pool>`, true).
					Return(&entity.DefinedPool{Name: "scratch", UUID: "6ba7b810-9dad-11d1-80b4-00c04fd430c8"}, nil)
			},
			check: func(t *testing.T, reply *stanza.IQ) {
				var payload struct {
					Pool stanza.DefinedPool `xml:"pool"`
				}
				require.NoError(t, reply.DecodePayload(&payload))
				assert.Equal(t, "scratch", payload.Pool.Name)
				assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", payload.Pool.UUID)
			},
		},
		{
			name:    "poolundefine with warnings",
			request: request("set", `<archipel action="poolundefine" identifier="default" delete="true"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("UndefinePool", "default", true).
					Return(&entity.UndefineResult{Warnings: []string{"contents were not deleted"}}, nil)
			},
			check: func(t *testing.T, reply *stanza.IQ) {
				var payload struct {
					Warnings []stanza.Warning `xml:"warning"`
				}
				require.NoError(t, reply.DecodePayload(&payload))
				require.Len(t, payload.Warnings, 1)
				assert.Equal(t, "contents were not deleted", payload.Warnings[0].Text)
			},
		},
		{
			name:    "poolundefine without delete attribute",
			request: request("set", `<archipel action="poolundefine" identifier="default"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("UndefinePool", "default", false).Return(&entity.UndefineResult{}, nil)
			},
			check: func(t *testing.T, reply *stanza.IQ) {
				assert.Empty(t, reply.Query.Inner)
			},
		},
		{
			name:    "poolsetautostart",
			request: request("set", `<archipel action="poolsetautostart" identifier="default" autostart="FALSE"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("SetAutostart", "default", false).Return(nil)
			},
		},
		{
			name:    "poolcreate",
			request: request("set", `<archipel action="poolcreate" identifier="default"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("CreatePool", "default").Return(nil)
			},
		},
		{
			name:    "pooldestroy",
			request: request("set", `<archipel action="pooldestroy" identifier="default"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("DestroyPool", "default").Return(nil)
			},
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockPoolService{}
			tc.mockSetup(svc)
			d := New(svc, nil)

			reply := handle(t, d, tc.request)
			require.NoError(t, reply.Err())
			assert.Equal(t, stanza.TypeResult, reply.Type)
			assert.Equal(t, "abc-1", reply.ID)
			assert.Equal(t, "hypervisor@example.com/agent", reply.From)
			assert.Equal(t, "admin@example.com/ctl", reply.To)
			require.NotNil(t, reply.Query)
			assert.Equal(t, stanza.NSStorage, reply.Query.XMLName.Space)
			if tc.check != nil {
				tc.check(t, reply)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestDispatcher_Errors(t *testing.T) {
	t.Parallel()

	notFound := apierror.WrapError(apierror.ErrNotFound, "pool with identifier ghost not found", nil)

	testcases := []struct {
		name         string
		request      []byte
		mockSetup    func(*mockPoolService)
		expectedCode int
		expectedKind apierror.Kind
	}{
		{
			name:         "malformed xml",
			request:      []byte(`<iq type="get"><query`),
			expectedCode: apierror.CodeGeneric,
			expectedKind: apierror.KindInvalidRequest,
		},
		{
			name:         "unknown action",
			request:      request("get", `<archipel action="poolexplode" identifier="default"/>`),
			expectedCode: apierror.CodeGeneric,
			expectedKind: apierror.KindInvalidRequest,
		},
		{
			name:         "wrong namespace",
			request:      []byte(`<iq type="get" id="abc-1"><query xmlns="archipel:vm:disk"><archipel action="poollist"/></query></iq>`),
			expectedCode: apierror.CodeGeneric,
			expectedKind: apierror.KindInvalidRequest,
		},
		{
			name:         "missing identifier",
			request:      request("get", `<archipel action="poolinfo"/>`),
			expectedCode: entity.ErrorCodePoolInfo,
			expectedKind: apierror.KindInvalidRequest,
		},
		{
			name:         "invalid build flag",
			request:      request("set", `<archipel action="pooldefine" build="yes"><pool/></archipel>`),
			expectedCode: entity.ErrorCodePoolDefine,
			expectedKind: apierror.KindInvalidRequest,
		},
		{
			name:         "missing descriptor",
			request:      request("set", `<archipel action="pooldefine"/>`),
			expectedCode: entity.ErrorCodePoolDefine,
			expectedKind: apierror.KindInvalidRequest,
		},
		{
			name:         "missing autostart flag",
			request:      request("set", `<archipel action="poolsetautostart" identifier="default"/>`),
			expectedCode: entity.ErrorCodePoolAutostart,
			expectedKind: apierror.KindInvalidRequest,
		},
		{
			name:         "invalid delete flag",
			request:      request("set", `<archipel action="poolundefine" identifier="default" delete="1"/>`),
			expectedCode: entity.ErrorCodePoolUndefine,
			expectedKind: apierror.KindInvalidRequest,
		},
		{
			name:    "list backend error",
			request: request("get", `<archipel action="poollist"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("ListPools").Return(nil, apierror.WrapError(apierror.ErrBackend, "list storage pools failed", nil))
			},
			expectedCode: entity.ErrorCodePoolList,
			expectedKind: apierror.KindBackendError,
		},
		{
			name:    "info not found",
			request: request("get", `<archipel action="poolinfo" identifier="ghost"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("GetPoolInfo", "ghost").Return(nil, notFound)
			},
			expectedCode: entity.ErrorCodePoolInfo,
			expectedKind: apierror.KindNotFound,
		},
		{
			name:    "volumes not found",
			request: request("get", `<archipel action="poolvolumes" identifier="ghost"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("ListVolumes", "ghost").Return(nil, notFound)
			},
			expectedCode: entity.ErrorCodePoolVolumes,
			expectedKind: apierror.KindNotFound,
		},
		{
			name:    "create failed",
			request: request("set", `<archipel action="poolcreate" identifier="default"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("CreatePool", "default").
					Return(apierror.WrapError(apierror.ErrOperationFailed, "start storage pool default failed", nil))
			},
			expectedCode: entity.ErrorCodePoolCreate,
			expectedKind: apierror.KindOperationFailed,
		},
		{
			name:    "destroy not found",
			request: request("set", `<archipel action="pooldestroy" identifier="ghost"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("DestroyPool", "ghost").Return(notFound)
			},
			expectedCode: entity.ErrorCodePoolDestroy,
			expectedKind: apierror.KindNotFound,
		},
		{
			name:    "describe not found",
			request: request("get", `<archipel action="pooldescription" identifier="ghost"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("DescribePool", "ghost").Return("", notFound)
			},
			expectedCode: entity.ErrorCodePoolDescription,
			expectedKind: apierror.KindNotFound,
		},
		{
			name:    "undefine not found",
			request: request("set", `<archipel action="poolundefine" identifier="ghost"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("UndefinePool", "ghost", false).Return(nil, notFound)
			},
			expectedCode: entity.ErrorCodePoolUndefine,
			expectedKind: apierror.KindNotFound,
		},
		{
			name:    "setautostart not found",
			request: request("set", `<archipel action="poolsetautostart" identifier="ghost" autostart="true"/>`),
			mockSetup: func(m *mockPoolService) {
				m.On("SetAutostart", "ghost", true).Return(notFound)
			},
			expectedCode: entity.ErrorCodePoolAutostart,
			expectedKind: apierror.KindNotFound,
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			svc := &mockPoolService{}
			if tc.mockSetup != nil {
				tc.mockSetup(svc)
			}
			d := New(svc, nil)

			reply := handle(t, d, tc.request)
			assert.Equal(t, stanza.TypeError, reply.Type)
			require.NotNil(t, reply.Error)
			assert.Equal(t, "cancel", reply.Error.Type)

			err := reply.Err()
			require.Error(t, err)
			var apiErr *apierror.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.expectedCode, apiErr.Code)
			assert.Equal(t, tc.expectedKind, apiErr.Kind)
			assert.NotEmpty(t, apiErr.Message)
			svc.AssertExpectations(t)
		})
	}
}

func TestDispatcher_ErrorEchoesQuery(t *testing.T) {
	t.Parallel()

	svc := &mockPoolService{}
	svc.On("GetPoolInfo", "ghost").
		Return(nil, apierror.WrapError(apierror.ErrNotFound, "pool with identifier ghost not found", nil))
	d := New(svc, nil)

	reply := handle(t, d, request("get", `<archipel action="poolinfo" identifier="ghost"/>`))
	require.NotNil(t, reply.Query)
	assert.Contains(t, string(reply.Query.Inner), `identifier="ghost"`)
	assert.Contains(t, reply.Error.Text.Value, "ghost")
}

func TestDispatcher_Metrics(t *testing.T) {
	t.Parallel()

	svc := &mockPoolService{}
	svc.On("ListPools").Return([]string{"default"}, nil)
	svc.On("CreatePool", "default").
		Return(apierror.WrapError(apierror.ErrOperationFailed, "start storage pool default failed", nil))

	metrics := NewMetrics()
	registry := prometheus.NewRegistry()
	require.NoError(t, registry.Register(metrics))

	d := New(svc, metrics)
	handle(t, d, request("get", `<archipel action="poollist"/>`))
	handle(t, d, request("get", `<archipel action="poollist"/>`))
	handle(t, d, request("set", `<archipel action="poolcreate" identifier="default"/>`))

	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.requests.WithLabelValues("poollist", outcomeSuccess, "")))
	assert.Equal(t, float64(1), testutil.ToFloat64(
		metrics.requests.WithLabelValues("poolcreate", outcomeError, string(apierror.KindOperationFailed))))
	assert.Equal(t, 2, testutil.CollectAndCount(metrics.duration))
}

func TestParseRequest(t *testing.T) {
	t.Parallel()

	testcases := []struct {
		name     string
		archipel *stanza.Archipel
		expected entity.StoragePoolRequest
	}{
		{
			name:     "poollist ignores identifier",
			archipel: &stanza.Archipel{Action: "poollist"},
			expected: entity.StoragePoolRequest{Action: entity.ActionPoolList},
		},
		{
			name:     "undefine with delete",
			archipel: &stanza.Archipel{Action: "poolundefine", Identifier: "default", Delete: "True"},
			expected: entity.StoragePoolRequest{Action: entity.ActionPoolUndefine, Identifier: "default", Delete: true},
		},
		{
			name:     "autostart on",
			archipel: &stanza.Archipel{Action: "poolsetautostart", Identifier: "default", Autostart: "true"},
			expected: entity.StoragePoolRequest{Action: entity.ActionPoolSetAutostart, Identifier: "default", Autostart: true},
		},
	}

	for _, tc := range testcases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			iq := stanza.NewRequest("abc-1", "agent", tc.archipel)
			req, err := parseRequest(iq)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, req)
		})
	}
}
