// Package docs 由 swag 生成的 API 文档注册
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/v1/auth/demo": {
            "post": {
                "produces": ["application/json"],
                "tags": ["认证"],
                "summary": "演示账号登录",
                "responses": {
                    "200": {"description": "登录成功", "schema": {"$ref": "#/definitions/api.Response"}},
                    "404": {"description": "演示账号不可用", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/auth/google/login": {
            "get": {
                "tags": ["认证"],
                "summary": "Google 登录",
                "responses": {
                    "302": {"description": "跳转到 Google 授权页"},
                    "503": {"description": "未配置 Google 登录", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/auth/google/callback": {
            "get": {
                "produces": ["application/json"],
                "tags": ["认证"],
                "summary": "Google 登录回调",
                "parameters": [
                    {"type": "string", "name": "code", "in": "query", "required": true},
                    {"type": "string", "name": "state", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "登录成功", "schema": {"$ref": "#/definitions/api.Response"}},
                    "400": {"description": "state 校验失败", "schema": {"$ref": "#/definitions/api.Response"}},
                    "401": {"description": "授权失败", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/dashboard": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["仪表盘"],
                "summary": "仪表盘",
                "responses": {"200": {"description": "获取成功", "schema": {"$ref": "#/definitions/api.Response"}}}
            }
        },
        "/api/v1/expenses": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["消费记录"],
                "summary": "消费记录列表",
                "responses": {"200": {"description": "获取成功", "schema": {"$ref": "#/definitions/api.Response"}}}
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["消费记录"],
                "summary": "记一笔消费",
                "responses": {
                    "200": {"description": "创建成功", "schema": {"$ref": "#/definitions/api.Response"}},
                    "400": {"description": "请求参数错误", "schema": {"$ref": "#/definitions/api.Response"}}
                }
            }
        },
        "/api/v1/meals/today": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["餐食"],
                "summary": "今日餐食",
                "responses": {"200": {"description": "获取成功", "schema": {"$ref": "#/definitions/api.Response"}}}
            }
        },
        "/api/v1/splits": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["分账"],
                "summary": "分账单列表",
                "responses": {"200": {"description": "获取成功", "schema": {"$ref": "#/definitions/api.Response"}}}
            }
        }
    },
    "definitions": {
        "api.Response": {
            "type": "object",
            "properties": {
                "code": {"type": "integer"},
                "data": {},
                "message": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Budget Bite API",
	Description:      "学生预算助手 API：消费记录、日限额、餐食计划、成就、分账与提醒",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
