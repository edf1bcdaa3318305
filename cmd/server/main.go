package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pekkahe/the-lone-cabin-samples/internal/nav"
	simnet "github.com/pekkahe/the-lone-cabin-samples/internal/net"
	"github.com/pekkahe/the-lone-cabin-samples/internal/sim"
	"github.com/pekkahe/the-lone-cabin-samples/internal/world"
	"github.com/pekkahe/the-lone-cabin-samples/logging"
	loggingSinks "github.com/pekkahe/the-lone-cabin-samples/logging/sinks"
)

func main() {
	logConfig := logging.DefaultConfig()
	router, err := logging.NewRouter(nil, logConfig, []logging.NamedSink{
		{Name: "console", Sink: loggingSinks.NewConsoleSink(os.Stdout, logConfig.Console)},
	})
	if err != nil {
		log.Fatalf("failed to construct logging router: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if cerr := router.Close(ctx); cerr != nil {
			log.Printf("failed to close logging router: %v", cerr)
		}
	}()

	level := buildCabinLevel()
	w := sim.NewWorld(sim.DefaultConfig(), level, router, nil)
	defer w.Close()

	yard := []nav.Vec3{
		{X: 4, Y: 0, Z: 4},
		{X: 16, Y: 0, Z: 4},
		{X: 16, Y: 0, Z: 16},
		{X: 4, Y: 0, Z: 16},
	}
	agent := w.SpawnAgent(nav.Vec3{X: 10, Y: 0, Z: 10}, yard)
	agent.Controller().Patrol()

	hub := simnet.NewHub()
	w.SetBroadcast(func(agents []sim.AgentSnapshot) {
		hub.Broadcast(w.Tick(), agents)
	})

	stop := make(chan struct{})
	go w.Run(stop)
	defer close(stop)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", hub.ServeWS)
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, _ *http.Request) {
		rw.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: ":8080", Handler: mux}
	go func() {
		log.Printf("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

// buildCabinLevel assembles a small demo scene: a fenced yard with an
// enclosed cabin whose doorway is gated by a door.
func buildCabinLevel() *world.Level {
	boxes := []world.Box{
		{ID: "ground", Kind: world.BoxFloor, Min: nav.Vec3{X: 0, Y: -1, Z: 0}, Max: nav.Vec3{X: 40, Y: 0, Z: 40}},
		{ID: "cabin-north", Kind: world.BoxWall, Min: nav.Vec3{X: 20, Y: 0, Z: 30}, Max: nav.Vec3{X: 30, Y: 3, Z: 30.5}},
		{ID: "cabin-south-west", Kind: world.BoxWall, Min: nav.Vec3{X: 20, Y: 0, Z: 24}, Max: nav.Vec3{X: 24, Y: 3, Z: 24.5}},
		{ID: "cabin-south-east", Kind: world.BoxWall, Min: nav.Vec3{X: 26, Y: 0, Z: 24}, Max: nav.Vec3{X: 30, Y: 3, Z: 24.5}},
		{ID: "cabin-west", Kind: world.BoxWall, Min: nav.Vec3{X: 20, Y: 0, Z: 24}, Max: nav.Vec3{X: 20.5, Y: 3, Z: 30}},
		{ID: "cabin-east", Kind: world.BoxWall, Min: nav.Vec3{X: 29.5, Y: 0, Z: 24}, Max: nav.Vec3{X: 30, Y: 3, Z: 30}},
		{ID: "cabin-room", Kind: world.BoxVolume, Min: nav.Vec3{X: 20, Y: 0, Z: 24}, Max: nav.Vec3{X: 30, Y: 3, Z: 30}},
	}
	waypoints := []nav.Waypoint{
		{ID: "yard-sw", Pos: nav.Vec3{X: 4, Y: 1, Z: 4}},
		{ID: "yard-se", Pos: nav.Vec3{X: 16, Y: 1, Z: 4}},
		{ID: "yard-ne", Pos: nav.Vec3{X: 16, Y: 1, Z: 16}},
		{ID: "yard-nw", Pos: nav.Vec3{X: 4, Y: 1, Z: 16}},
		{ID: "porch", Pos: nav.Vec3{X: 25, Y: 1, Z: 22}},
		{ID: "cabin-inside", Pos: nav.Vec3{X: 25, Y: 1, Z: 27}},
	}
	level := world.NewLevel(boxes, waypoints)
	door := world.NewDoor(
		"cabin-door",
		world.Box{Kind: world.BoxWall, Min: nav.Vec3{X: 24, Y: 0, Z: 24}, Max: nav.Vec3{X: 26, Y: 3, Z: 24.5}},
		[]nav.WaypointPair{{A: "porch", B: "cabin-inside"}},
		world.DoorClosed,
	)
	level.AddDoor(door)
	return level
}
