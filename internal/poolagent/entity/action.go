package entity

import "fmt"

// Action 存储池请求动作
type Action int

const (
	ActionPoolList Action = iota + 1
	ActionPoolInfo
	ActionPoolVolumes
	ActionPoolCreate
	ActionPoolDestroy
	ActionPoolDescription
	ActionPoolDefine
	ActionPoolUndefine
	ActionPoolSetAutostart
)

// 每个动作的错误码
const (
	ErrorCodePoolList        = -11001
	ErrorCodePoolCreate      = -11002
	ErrorCodePoolDestroy     = -11003
	ErrorCodePoolInfo        = -11004
	ErrorCodePoolDelete      = -11005 // 保留，没有独立的 delete 动作
	ErrorCodePoolDefine      = -11006
	ErrorCodePoolUndefine    = -11007
	ErrorCodePoolDescription = -11008
	ErrorCodePoolAutostart   = -11009
	ErrorCodePoolVolumes     = -11010
)

var actionNames = map[Action]string{
	ActionPoolList:         "poollist",
	ActionPoolInfo:         "poolinfo",
	ActionPoolVolumes:      "poolvolumes",
	ActionPoolCreate:       "poolcreate",
	ActionPoolDestroy:      "pooldestroy",
	ActionPoolDescription:  "pooldescription",
	ActionPoolDefine:       "pooldefine",
	ActionPoolUndefine:     "poolundefine",
	ActionPoolSetAutostart: "poolsetautostart",
}

var actionsByName = func() map[string]Action {
	m := make(map[string]Action, len(actionNames))
	for a, name := range actionNames {
		m[name] = a
	}
	return m
}()

// Actions 返回全部动作
func Actions() []Action {
	return []Action{
		ActionPoolList,
		ActionPoolInfo,
		ActionPoolVolumes,
		ActionPoolCreate,
		ActionPoolDestroy,
		ActionPoolDescription,
		ActionPoolDefine,
		ActionPoolUndefine,
		ActionPoolSetAutostart,
	}
}

// ParseAction 解析动作名称
func ParseAction(name string) (Action, error) {
	a, ok := actionsByName[name]
	if !ok {
		return 0, fmt.Errorf("unknown storage action %q", name)
	}
	return a, nil
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ErrorCode 返回动作失败时使用的错误码
func (a Action) ErrorCode() int {
	switch a {
	case ActionPoolList:
		return ErrorCodePoolList
	case ActionPoolInfo:
		return ErrorCodePoolInfo
	case ActionPoolVolumes:
		return ErrorCodePoolVolumes
	case ActionPoolCreate:
		return ErrorCodePoolCreate
	case ActionPoolDestroy:
		return ErrorCodePoolDestroy
	case ActionPoolDescription:
		return ErrorCodePoolDescription
	case ActionPoolDefine:
		return ErrorCodePoolDefine
	case ActionPoolUndefine:
		return ErrorCodePoolUndefine
	case ActionPoolSetAutostart:
		return ErrorCodePoolAutostart
	default:
		return -1
	}
}

// NeedsIdentifier 动作是否需要 identifier 参数
func (a Action) NeedsIdentifier() bool {
	return a != ActionPoolList && a != ActionPoolDefine
}
