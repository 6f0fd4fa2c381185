package prom

import (
	"context"
	"fmt"
	"strconv"

	v1 "github.com/prometheus/client_golang/api/prometheus/v1"
	"github.com/prometheus/common/model"
	log "github.com/sirupsen/logrus"

	"github.com/kekexiaoai/healthdetail/pkg/element"
)

// 目标标签：被管理元素以 scrape target 的形式注册
const (
	LabelProtocolName    model.LabelName = "protocol_name"
	LabelProtocolVersion model.LabelName = "protocol_version"
	LabelDMAID           model.LabelName = "dma_id"
	LabelElementID       model.LabelName = "element_id"
	LabelElementName     model.LabelName = "element_name"
)

// Inventory looks up managed elements among the active scrape targets.
// A target that is not healthy counts as a stopped element.
type Inventory struct {
	client *Client
}

func NewInventory(client *Client) *Inventory {
	return &Inventory{client: client}
}

// LookupElements implements element.Inventory.
func (inv *Inventory) LookupElements(ctx context.Context, q element.Query) ([]element.Ref, error) {
	targets, err := inv.client.Targets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get targets: %w", err)
	}

	return filterElements(targets.Active, q), nil
}

func filterElements(active []v1.ActiveTarget, q element.Query) []element.Ref {
	seen := make(map[string]bool)
	var refs []element.Ref
	for _, target := range active {
		if string(target.Labels[LabelProtocolName]) != q.ProtocolName ||
			string(target.Labels[LabelProtocolVersion]) != q.ProtocolVersion {
			continue
		}
		if !q.IncludeStopped && target.Health != v1.HealthGood {
			continue
		}

		ref, err := targetToRef(target)
		if err != nil {
			log.WithField("scrape_url", target.ScrapeURL).Warnf("skipping target: %v", err)
			continue
		}

		// 同一元素可能出现在多个 scrape pool 中
		if seen[ref.Key()] {
			continue
		}
		seen[ref.Key()] = true
		refs = append(refs, ref)
	}
	return refs
}

func targetToRef(target v1.ActiveTarget) (element.Ref, error) {
	dmaID, err := strconv.Atoi(string(target.Labels[LabelDMAID]))
	if err != nil {
		return element.Ref{}, fmt.Errorf("invalid %s label: %w", LabelDMAID, err)
	}
	elementID, err := strconv.Atoi(string(target.Labels[LabelElementID]))
	if err != nil {
		return element.Ref{}, fmt.Errorf("invalid %s label: %w", LabelElementID, err)
	}
	return element.Ref{
		AgentID:         dmaID,
		ElementID:       elementID,
		ProtocolName:    string(target.Labels[LabelProtocolName]),
		ProtocolVersion: string(target.Labels[LabelProtocolVersion]),
		Name:            string(target.Labels[LabelElementName]),
	}, nil
}
