package server

import (
	"context"

	"google.golang.org/grpc"

	"github.com/nainya/copyforge/internal/studio"
	"github.com/nainya/copyforge/pkg/content"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "copyforge.v1.Studio"

// studioService is the handler type checked by grpc.Server.RegisterService
type studioService interface {
	studio(kind content.ToolKind) (*studio.Studio, error)
}

// ServiceDesc describes the studio service. Messages are the Go structs in
// messages.go, carried by the "json" codec.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*studioService)(nil),
	Methods: []grpc.MethodDesc{
		unary("Generate", (*Server).Generate),
		unary("Regenerate", (*Server).Regenerate),
		unary("GetActive", (*Server).GetActive),
		unary("ListVersions", (*Server).ListVersions),
		unary("SelectVersion", (*Server).SelectVersion),
		unary("DeleteVersion", (*Server).DeleteVersion),
		unary("BeginEdit", (*Server).BeginEdit),
		unary("SetDraft", (*Server).SetDraft),
		unary("CommitEdit", (*Server).CommitEdit),
		unary("CancelEdit", (*Server).CancelEdit),
		unary("ResetItem", (*Server).ResetItem),
		unary("ToggleCompare", (*Server).ToggleCompare),
		unary("ToggleFavorite", (*Server).ToggleFavorite),
		unary("Export", (*Server).Export),
		unary("ExportProgress", (*Server).ExportProgress),
		unary("CancelExport", (*Server).CancelExport),
		unary("SaveDraft", (*Server).SaveDraft),
		unary("LoadDraft", (*Server).LoadDraft),
		unary("SaveConfig", (*Server).SaveConfig),
		unary("LoadConfig", (*Server).LoadConfig),
		unary("ListConfigs", (*Server).ListConfigs),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "copyforge/v1/studio",
}

// Register attaches the studio service to a gRPC server
func Register(gs *grpc.Server, s *Server) {
	gs.RegisterService(&ServiceDesc, s)
}

// unary builds a method descriptor that decodes Req, runs the interceptor
// chain and dispatches to call.
func unary[Req, Resp any](name string, call func(*Server, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			s := srv.(*Server)
			if interceptor == nil {
				return call(s, ctx, in)
			}
			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: "/" + ServiceName + "/" + name,
			}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(s, ctx, req.(*Req))
			})
		},
	}
}
