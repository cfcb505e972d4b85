package dycast

import (
	"os/exec"

	"go.uber.org/zap"

	"github.com/hanxiao1024/dycast/pkg/logger"
	"github.com/hanxiao1024/dycast/pkg/metrics"
)

// runStatusHooks 按状态切换边沿执行钩子命令
//
// 只有 非直播中→直播中 与 直播中→已下播 两条边触发；
// 命令的执行结果只记日志，不影响客户端状态
func (c *DyCast) runStatusHooks(oldStatus, newStatus RoomStatus) {
	if oldStatus != StatusLiving && newStatus == StatusLiving && c.cfg.Hooks.OnLiveStart != "" {
		c.runHook("live_start", c.cfg.Hooks.OnLiveStart)
	}
	if oldStatus == StatusLiving && newStatus == StatusEnd && c.cfg.Hooks.OnLiveEnd != "" {
		c.runHook("live_end", c.cfg.Hooks.OnLiveEnd)
	}
}

// runHook 异步执行外部命令，不等待结果
func (c *DyCast) runHook(name, command string) {
	metrics.CastHookRuns.WithLabelValues(name).Inc()
	go func() {
		cmd := exec.Command("sh", "-c", command)
		out, err := cmd.CombinedOutput()
		if err != nil {
			logger.Error("钩子命令执行失败",
				zap.String("room", c.roomNum),
				zap.String("hook", name),
				zap.ByteString("output", out),
				zap.Error(err),
			)
			return
		}
		logger.Info("钩子命令执行完成",
			zap.String("room", c.roomNum),
			zap.String("hook", name),
			zap.ByteString("output", out),
		)
	}()
}
