package exporter

// Stage 导出阶段
type Stage string

const (
	StagePrepare Stage = "prepare"
	StageLoad    Stage = "load"
	StageRender  Stage = "render"
	StageWrite   Stage = "write"
	StageDone    Stage = "done"
)

// stagePercent 各阶段完成时的进度
var stagePercent = map[Stage]int{
	StagePrepare: 10,
	StageLoad:    30,
	StageRender:  50,
	StageWrite:   80,
	StageDone:    100,
}

// ProgressEvent 导出进度事件
type ProgressEvent struct {
	Percent int
	Stage   Stage
}

func reportProgress(progress func(ProgressEvent), stage Stage) {
	if progress == nil {
		return
	}
	progress(ProgressEvent{
		Percent: stagePercent[stage],
		Stage:   stage,
	})
}
