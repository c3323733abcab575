// Package httpaccess hands out HTTP clients for outbound requests that honour
// a forward proxy, a host bypass list, proxy credentials and connection
// pooling, all driven by "httpAccess.*" configuration properties.
//
// A Service is built once from Settings and is safe for concurrent use:
//
//	settings, err := httpaccess.LoadSettings(props)
//	if err != nil {
//	    return err
//	}
//	svc, err := httpaccess.New(settings)
//
//	m, _ := httpaccess.NewMethod(ctx, http.MethodGet, "https://api.example.com/items")
//	client, err := svc.Client(m)
//	resp, err := client.Do(m)
//	defer svc.Release(client, m)
//	if !svc.Validate(resp.StatusCode) {
//	    ...
//	}
//
// # Pooling
//
// With httpAccess.connectionPoolEnabled=true the Service keeps at most two
// long-lived clients, one for proxied and one for direct traffic, sharing a
// single ConnectionManager. Otherwise every acquisition gets a fresh client
// whose connections are closed on Release.
//
// # Request parameters
//
// Proxy, credentials, charsets and timeouts belong to the acquisition, not
// to the shared client. Each Client carries its own Params and the shared
// transport reads them from the request context, so concurrent requests
// never see each other's proxy settings.
package httpaccess
