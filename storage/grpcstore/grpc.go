package grpcstore

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// DatumStoreServer is the server API for the DatumStore gRPC service.
//
// We intentionally use protobuf well-known wrapper types so this package does
// not require a protoc/codegen toolchain.
//
// Proto definition: datumstore.proto.
type DatumStoreServer interface {
	Put(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
	Get(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error)
	Has(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error)
}

// UnimplementedDatumStoreServer can be embedded to have forward compatible implementations.
type UnimplementedDatumStoreServer struct{}

func (UnimplementedDatumStoreServer) Put(context.Context, *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Put not implemented")
}
func (UnimplementedDatumStoreServer) Get(context.Context, *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Get not implemented")
}
func (UnimplementedDatumStoreServer) Has(context.Context, *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Has not implemented")
}

// RegisterDatumStoreServer registers the DatumStore service on a gRPC server.
func RegisterDatumStoreServer(s grpc.ServiceRegistrar, srv DatumStoreServer) {
	s.RegisterService(&DatumStore_ServiceDesc, srv)
}

// DatumStoreClient is the client API for the DatumStore gRPC service.
type DatumStoreClient interface {
	Put(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
	Get(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Has(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
}

type datumStoreClient struct{ cc grpc.ClientConnInterface }

func NewDatumStoreClient(cc grpc.ClientConnInterface) DatumStoreClient {
	return &datumStoreClient{cc: cc}
}

func (c *datumStoreClient) Put(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	err := c.cc.Invoke(ctx, "/terrasacha.storage.grpcstore.v1.DatumStore/Put", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *datumStoreClient) Get(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/terrasacha.storage.grpcstore.v1.DatumStore/Get", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *datumStoreClient) Has(ctx context.Context, in *wrapperspb.StringValue, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	err := c.cc.Invoke(ctx, "/terrasacha.storage.grpcstore.v1.DatumStore/Has", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _DatumStore_Put_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DatumStoreServer).Put(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/terrasacha.storage.grpcstore.v1.DatumStore/Put"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DatumStoreServer).Put(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _DatumStore_Get_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DatumStoreServer).Get(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/terrasacha.storage.grpcstore.v1.DatumStore/Get"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DatumStoreServer).Get(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _DatumStore_Has_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(DatumStoreServer).Has(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/terrasacha.storage.grpcstore.v1.DatumStore/Has"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(DatumStoreServer).Has(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

// DatumStore_ServiceDesc is the grpc.ServiceDesc for the DatumStore service.
var DatumStore_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "terrasacha.storage.grpcstore.v1.DatumStore",
	HandlerType: (*DatumStoreServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Put", Handler: _DatumStore_Put_Handler},
		{MethodName: "Get", Handler: _DatumStore_Get_Handler},
		{MethodName: "Has", Handler: _DatumStore_Has_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "datumstore.proto",
}
