package social

import "socialnexus/internal/domain/notification"

// Stat is a fixed label/value pair shown on the connected dashboard.
// The values are decorative; nothing is measured.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// DashboardStats are the figures shown next to a connected profile.
var DashboardStats = []Stat{
	{Label: "Uplink Status", Value: "Active"},
	{Label: "Signal Latency", Value: "0.8ms"},
	{Label: "Data Pipeline", Value: "Optimal"},
	{Label: "Neural Load", Value: "4%"},
}

// ProviderView is the render state of one provider tab.
type ProviderView struct {
	Provider Provider `json:"provider"`
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Link     string   `json:"link,omitempty"`
	Active   bool     `json:"active"`
}

// View is a point-in-time snapshot of a panel for rendering.
type View struct {
	PanelID    string                      `json:"panelId"`
	Anonymous  bool                        `json:"anonymous"`
	Persistent bool                        `json:"persistent"`
	Active     Provider                    `json:"active"`
	Current    ProviderView                `json:"current"`
	Tabs       []ProviderView              `json:"tabs"`
	Input      string                      `json:"input"`
	Busy       bool                        `json:"busy"`
	Stats      []Stat                      `json:"stats,omitempty"`
	Toasts     []notification.Notification `json:"toasts"`
}

// ShowDashboard reports whether the connected dashboard replaces the form.
func (v View) ShowDashboard() bool {
	return v.Current.Status == Connected.String()
}

// View snapshots the panel and drains its pending notifications.
func (p *Panel) View() View {
	p.mu.Lock()
	v := View{
		PanelID:    p.id,
		Anonymous:  p.userID == "",
		Persistent: p.deps.Store.Persistent(p.userID),
		Active:     p.active,
		Input:      p.input,
	}
	for _, prov := range Providers() {
		st := p.states[prov]
		pv := ProviderView{
			Provider: prov,
			Name:     prov.DisplayName(),
			Status:   st.Status.String(),
			Link:     st.Link,
			Active:   prov == p.active,
		}
		v.Tabs = append(v.Tabs, pv)
		if pv.Active {
			v.Current = pv
			v.Busy = st.Status == Connecting
		}
	}
	p.touch()
	p.mu.Unlock()

	if v.ShowDashboard() {
		v.Stats = DashboardStats
	}
	v.Toasts = p.toasts.Drain()
	if v.Toasts == nil {
		v.Toasts = []notification.Notification{}
	}
	return v
}
