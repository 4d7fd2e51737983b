package commands

import (
	"context"

	"dispatch/internal/core/domain/model/supplynode"
	"dispatch/internal/core/ports"
)

type CreateSupplyNodeCommandHandler struct {
	supplyNodes ports.SupplyNodeDirectory
}

func NewCreateSupplyNodeCommandHandler(supplyNodes ports.SupplyNodeDirectory) CreateSupplyNodeCommandHandler {
	return CreateSupplyNodeCommandHandler{supplyNodes: supplyNodes}
}

func (h CreateSupplyNodeCommandHandler) Handle(ctx context.Context, cmd CreateSupplyNodeCommand) (*supplynode.SupplyNode, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	n, err := supplynode.NewSupplyNode(cmd.SupplyNodeID(), cmd.Name(), cmd.Location())
	if err != nil {
		return nil, err
	}

	if err := h.supplyNodes.Add(ctx, n); err != nil {
		return nil, err
	}
	return n, nil
}
