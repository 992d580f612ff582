package gateway

import (
	"go.uber.org/zap"

	"github.com/taoyao-code/vedirect-server/internal/app"
	"github.com/taoyao-code/vedirect-server/internal/tcpserver"
)

// NewConnHandler 构建 TCP 连接处理器。每个连接是一路独立的 VE.Direct
// 遥测流：挂一个流式解析器，把结算结果交给采集器。
func NewConnHandler(collector *app.Collector, log *zap.Logger) tcpserver.ConnHandler {
	return func(cc *tcpserver.ConnContext) {
		sink := collector.NewSink("tcp:" + cc.RemoteAddr().String())
		// 识别出序列号后把连接标记换成设备序列号,日志好认
		sink.OnSerial(func(serial string) { cc.SetSource(serial) })

		stream := sink.Stream()
		cc.SetOnRead(func(b []byte) {
			stream.Feed(b)
		})

		log.Debug("vedirect stream attached",
			zap.Uint64("conn_id", cc.ID()),
			zap.String("remote", cc.RemoteAddr().String()))

		go func() {
			<-cc.Done()
			sink.Close()
		}()
	}
}
