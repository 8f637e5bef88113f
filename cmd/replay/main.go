package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/oculab/go-ocular/internal/log"
	"github.com/oculab/go-ocular/pkg/protocol"
	"github.com/oculab/go-ocular/pkg/session"
)

func main() {
	file := flag.String("file", "", "Session file to replay")
	dir := flag.String("dir", "./sessions", "Session store directory")
	id := flag.String("id", "", "Session id to replay from the store")
	speed := flag.Float64("speed", 1.0, "Playback speed multiplier")
	loop := flag.Bool("loop", false, "Loop playback")
	list := flag.Bool("list", false, "List stored sessions and exit")
	flag.Parse()

	log.Init("warn")

	if *list {
		store, err := session.NewStore(*dir)
		if err != nil {
			fatal("open store: %v", err)
		}
		ids, err := store.List()
		if err != nil {
			fatal("list sessions: %v", err)
		}
		for _, s := range ids {
			fmt.Println(s)
		}
		return
	}

	rec, err := loadRecording(*file, *dir, *id)
	if err != nil {
		fatal("%v", err)
	}

	fmt.Fprintf(os.Stderr, "Replaying %s: %d frames, %.0f fps, %dms\n",
		rec.SessionID, len(rec.Frames), rec.FPS, rec.DurationMs)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	enc := json.NewEncoder(os.Stdout)
	player := session.NewPlayer()
	err = player.PlayWithOptions(ctx, rec, func(f session.RecordedFrame) bool {
		msg, err := protocol.NewDrawMessage(f.Draw)
		if err != nil {
			return false
		}
		return enc.Encode(msg) == nil
	}, session.PlayOptions{Speed: *speed, Loop: *loop})

	if err != nil && err != context.Canceled {
		fatal("playback: %v", err)
	}
}

func loadRecording(file, dir, id string) (*session.Recording, error) {
	switch {
	case file != "":
		return session.LoadFile(file)
	case id != "":
		store, err := session.NewStore(dir)
		if err != nil {
			return nil, err
		}
		return store.Load(id)
	default:
		return nil, fmt.Errorf("either -file or -id is required")
	}
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
