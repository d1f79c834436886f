package server

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	flog "github.com/msto63/frege/foundation/core/log"
	"github.com/msto63/frege/foundation/script"
	"github.com/msto63/frege/internal/history/store"
	corerpc "github.com/msto63/frege/pkg/core/grpc"
)

func newGRPCClient(t *testing.T, history store.RunStore) *grpc.ClientConn {
	t.Helper()

	s, err := New(DefaultConfig(), Options{
		Engine:  script.NewEngine(script.Options{Logger: flog.Discard(), MaxResolveDepth: 100}),
		History: history,
		Logger:  flog.Discard(),
	})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	lis := bufconn.Listen(1 << 20)
	gs := corerpc.NewServer(corerpc.DefaultServerConfig(), flog.Discard())
	s.RegisterGRPC(gs.GRPCServer(), time.Hour)
	go gs.Serve(lis)

	conn, err := corerpc.Dial(corerpc.DefaultClientConfig("passthrough:///bufnet"), flog.Discard(),
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
		gs.Stop()
		s.Stop(context.Background())
	})
	return conn
}

func TestGRPC_Run(t *testing.T) {
	conn := newGRPCClient(t, nil)

	tests := []struct {
		name        string
		source      string
		wantType    string
		wantOutput  []string
		wantMessage string
	}{
		{"demo program", script.DemoProgram, TypeResult, []string{"8"}, ""},
		{"string concatenation", `print("a" + 1);`, TypeResult, []string{"a1"}, ""},
		{"runtime error keeps output", "print(1); foo();", TypeError, []string{"1"}, "unknown function: foo"},
		{"syntax error", "print(1", TypeError, nil, `Error: on Line: (1, 8) -> Syntax Error: expected "," or ")", found end of input -> print(1`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			got, err := RemoteRun(ctx, conn, tt.source)
			if err != nil {
				t.Fatalf("RemoteRun() error = %v", err)
			}
			if got.Type != tt.wantType {
				t.Errorf("Type = %q, want %q", got.Type, tt.wantType)
			}
			if len(got.Output) != len(tt.wantOutput) {
				t.Fatalf("Output = %q, want %q", got.Output, tt.wantOutput)
			}
			for i := range got.Output {
				if got.Output[i] != tt.wantOutput[i] {
					t.Errorf("Output[%d] = %q, want %q", i, got.Output[i], tt.wantOutput[i])
				}
			}
			if got.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestGRPC_RunRejectsBlankSource(t *testing.T) {
	conn := newGRPCClient(t, nil)

	_, err := RemoteRun(context.Background(), conn, "  \n")
	if status.Code(err) != codes.InvalidArgument {
		t.Errorf("RemoteRun() code = %v, want InvalidArgument", status.Code(err))
	}
}

func TestGRPC_RunIsCachedAndRecorded(t *testing.T) {
	history := store.NewMemoryRunStore()
	conn := newGRPCClient(t, history)

	first, err := RemoteRun(context.Background(), conn, "print(2 * 21);")
	if err != nil {
		t.Fatalf("RemoteRun() error = %v", err)
	}
	second, err := RemoteRun(context.Background(), conn, "print(2 * 21);")
	if err != nil {
		t.Fatalf("RemoteRun() error = %v", err)
	}
	if first.Cached || !second.Cached {
		t.Errorf("cached = %v, %v; want false, true", first.Cached, second.Cached)
	}

	runs, _ := history.List(context.Background(), store.RunFilter{Origin: store.OriginPlayground})
	if len(runs) != 2 {
		t.Errorf("recorded %d playground runs, want 2", len(runs))
	}
}

func TestGRPC_Health(t *testing.T) {
	conn := newGRPCClient(t, nil)
	client := healthpb.NewHealthClient(conn)

	for _, service := range []string{"", PlaygroundServiceName} {
		resp, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: service})
		if err != nil {
			t.Fatalf("Check(%q) error = %v", service, err)
		}
		if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
			t.Errorf("Check(%q) = %v, want SERVING", service, resp.GetStatus())
		}
	}

	_, err := client.Check(context.Background(), &healthpb.HealthCheckRequest{Service: "unknown"})
	if status.Code(err) != codes.NotFound {
		t.Errorf("Check(unknown) code = %v, want NotFound", status.Code(err))
	}
}
