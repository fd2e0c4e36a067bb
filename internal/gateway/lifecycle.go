package gateway

import "sync"

// State はサーバーのライフサイクル状態。
type State int

const (
	// StateIdle はリッスン開始前の状態。
	StateIdle State = iota
	// StateRunning は新規接続を受け付けている状態。
	StateRunning
	// StateDraining は新規接続の受け付けを止め、処理中のリクエストの完了を待っている状態。
	StateDraining
	// StateStopped はサーバーが完全に停止した状態。
	StateStopped
)

// String は状態名を返す。
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Event は状態遷移を引き起こすイベント。
type Event int

const (
	// EventListening はリスナーのバインドに成功したことを表す。
	EventListening Event = iota
	// EventSignal は終了シグナル（またはコンテキストのキャンセル）を受け取ったことを表す。
	EventSignal
	// EventDrained は処理中のリクエストが全て完了したことを表す。
	EventDrained
	// EventDrainTimeout は処理中のリクエストの完了待ちがタイムアウトしたことを表す。
	EventDrainTimeout
	// EventFailed はリスナーが異常終了したことを表す。
	EventFailed
)

// String はイベント名を返す。
func (e Event) String() string {
	switch e {
	case EventListening:
		return "listening"
	case EventSignal:
		return "signal"
	case EventDrained:
		return "drained"
	case EventDrainTimeout:
		return "drain_timeout"
	case EventFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// transition は現在の状態とイベントから次の状態を決定する。
// forceCloseがtrueの場合、呼び出し側は残っている接続を強制的に切断しなければならない。
// 定義されていない組み合わせでは状態は変わらない。
func transition(current State, event Event) (next State, forceClose bool) {
	switch current {
	case StateIdle:
		switch event {
		case EventListening:
			return StateRunning, false
		case EventFailed:
			return StateStopped, false
		}
	case StateRunning:
		switch event {
		case EventSignal:
			return StateDraining, false
		case EventFailed:
			return StateStopped, false
		}
	case StateDraining:
		switch event {
		case EventDrained:
			return StateStopped, false
		case EventSignal, EventDrainTimeout:
			return StateStopped, true
		case EventFailed:
			return StateStopped, true
		}
	}
	return current, false
}

// lifecycle はサーバーの状態を保持し、transitionを通してのみ更新する。
type lifecycle struct {
	mu    sync.Mutex
	state State
}

// fire はイベントを適用し、遷移前後の状態と強制切断の要否を返す。
func (l *lifecycle) fire(event Event) (from, to State, forceClose bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	from = l.state
	l.state, forceClose = transition(from, event)
	return from, l.state, forceClose
}

// current は現在の状態を返す。
func (l *lifecycle) current() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
